package config

// Map of job names to job functions
type CronJob struct {
	Schedule string
	Job      func(...string)
}

// CronJobs holds statically configured jobs. Extension packages register
// theirs through cron.Register instead.
var CronJobs = map[string]CronJob{}
