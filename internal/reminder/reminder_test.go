package reminder

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewReminder(t *testing.T) {
	rem := NewReminder("drink water", Cron("0 * * * * *"), Delivery{Channel: "cli"})
	if rem.ID == "" {
		t.Error("reminder ID should not be empty")
	}
	if rem.Text != "drink water" {
		t.Errorf("text = %q, want drink water", rem.Text)
	}
	if !rem.Enabled {
		t.Error("reminder should be enabled by default")
	}
	if rem.Schedule.Kind != KindCron {
		t.Errorf("kind = %q, want cron", rem.Schedule.Kind)
	}
}

func TestService_AddAndList(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "reminders.json")
	s := NewService(storePath)

	rem, err := s.Add("stretch", At(time.Now().Add(time.Hour)), Delivery{Channel: "cli"})
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if rem.Text != "stretch" {
		t.Errorf("text = %q, want stretch", rem.Text)
	}

	list := s.List()
	if len(list) != 1 {
		t.Fatalf("len(list) = %d, want 1", len(list))
	}
	if s.Pending() != 1 {
		t.Errorf("pending = %d, want 1", s.Pending())
	}

	// Verify persistence
	data, err := os.ReadFile(storePath)
	if err != nil {
		t.Fatalf("read store: %v", err)
	}
	var stored []Reminder
	if err := json.Unmarshal(data, &stored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(stored) != 1 || stored[0].Text != "stretch" {
		t.Errorf("stored = %+v", stored)
	}
}

func TestService_Remove(t *testing.T) {
	s := NewService(filepath.Join(t.TempDir(), "reminders.json"))

	rem, _ := s.Add("gone soon", At(time.Now().Add(time.Hour)), Delivery{})

	if !s.Remove(rem.ID) {
		t.Error("Remove returned false")
	}
	if len(s.List()) != 0 {
		t.Error("reminder not removed")
	}
	if s.Remove("nonexistent") {
		t.Error("Remove should return false for nonexistent")
	}
}

func TestService_LoadsOnStart(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "reminders.json")

	first := NewService(storePath)
	if _, err := first.Add("persisted", At(time.Now().Add(time.Hour)), Delivery{}); err != nil {
		t.Fatalf("Add error: %v", err)
	}

	second := NewService(storePath)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := second.Start(ctx); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	defer second.Stop()

	if len(second.List()) != 1 {
		t.Fatalf("expected reloaded reminder, got %d", len(second.List()))
	}
}

func TestService_OneShotFires(t *testing.T) {
	s := NewService(filepath.Join(t.TempDir(), "reminders.json"))

	var fired atomic.Int32
	done := make(chan Reminder, 1)
	s.OnRemind = func(rem Reminder) {
		fired.Add(1)
		select {
		case done <- rem:
		default:
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	defer s.Stop()

	if _, err := s.Add("now", At(time.Now().Add(-time.Second)), Delivery{Channel: "cli"}); err != nil {
		t.Fatalf("Add error: %v", err)
	}

	select {
	case rem := <-done:
		if rem.Text != "now" {
			t.Errorf("fired text = %q, want now", rem.Text)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("one-shot reminder did not fire")
	}

	// Give the post-fire bookkeeping a moment, then check it is disabled.
	deadline := time.Now().Add(3 * time.Second)
	for {
		if s.Pending() == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("fired one-shot should be disabled")
		}
		time.Sleep(50 * time.Millisecond)
	}
	if fired.Load() < 1 {
		t.Fatalf("fired = %d, want >= 1", fired.Load())
	}
}
