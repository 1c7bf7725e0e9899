package cache

import (
	"testing"
	"time"
)

func TestNewCache(t *testing.T) {
	c := NewCache()
	if c == nil {
		t.Fatal("NewCache returned nil")
	}
}

func TestGetInstance(t *testing.T) {
	inst := GetInstance()
	if inst == nil {
		t.Fatal("GetInstance returned nil")
	}
	if GetInstance() != inst {
		t.Error("GetInstance should return same instance")
	}
}

func TestSet_Get(t *testing.T) {
	c := GetInstance()
	key := "test-set-get"
	c.Set(key, "val", 0, nil)
	got, ok := c.Get(key)
	if !ok {
		t.Fatal("Get: want true")
	}
	if got != "val" {
		t.Errorf("Get = %v, want val", got)
	}
	c.Delete(key)
}

func TestGet_Missing(t *testing.T) {
	c := GetInstance()
	_, ok := c.Get("nonexistent-key-xyz")
	if ok {
		t.Error("Get missing key: want false")
	}
}

func TestSet_TTLExpires(t *testing.T) {
	c := NewCache()
	c.Set("ttl-key", "v", 1, nil)
	if _, ok := c.Get("ttl-key"); !ok {
		t.Fatal("value should exist before TTL")
	}
	time.Sleep(1100 * time.Millisecond)
	if _, ok := c.Get("ttl-key"); ok {
		t.Error("value should have expired")
	}
}

func TestSetN_GetN_DeleteN(t *testing.T) {
	c := GetInstance()
	c.SetN([]interface{}{"a", "b"}, "composite-val", 0, nil)
	got, ok := c.GetN("a", "b")
	if !ok || got != "composite-val" {
		t.Errorf("GetN = %v, %v; want composite-val, true", got, ok)
	}
	c.DeleteN("a", "b")
	_, ok = c.GetN("a", "b")
	if ok {
		t.Error("DeleteN: key should be gone")
	}
}

func TestTagKey_DeleteTag(t *testing.T) {
	c := GetInstance()
	key1, key2 := "tag-k1", "tag-k2"
	c.Set(key1, "v1", 0, nil)
	c.Set(key2, "v2", 0, nil)
	c.TagKey(key1, []string{"t1"})
	c.TagKey(key2, []string{"t1"})

	c.DeleteTag("t1")
	if _, ok := c.Get(key1); ok {
		t.Error("DeleteTag: key1 should be gone")
	}
	if _, ok := c.Get(key2); ok {
		t.Error("DeleteTag: key2 should be gone")
	}
}

func TestFlush(t *testing.T) {
	c := NewCache()
	c.Set("f1", 1, 0, []string{"ftag"})
	c.Set("f2", 2, 0, nil)
	c.Flush()
	if _, ok := c.Get("f1"); ok {
		t.Error("Flush: f1 should be gone")
	}
	if _, ok := c.Get("f2"); ok {
		t.Error("Flush: f2 should be gone")
	}
}
