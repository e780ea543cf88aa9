package reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	rcron "github.com/robfig/cron/v3"
)

// Service schedules reminders and delivers them through the OnRemind
// callback. Reminders are persisted as a JSON list so they survive restarts.
// One-shot reminders are driven by a 1s tick loop; cron reminders by
// robfig/cron.
type Service struct {
	storePath string
	mu        sync.Mutex
	reminders []Reminder
	OnRemind  func(rem Reminder)
	cron      *rcron.Cron
	entryMap  map[string]rcron.EntryID // reminder ID -> cron entry ID
	cancel    context.CancelFunc
	stopCh    chan struct{}
}

func NewService(storePath string) *Service {
	return &Service{
		storePath: storePath,
		entryMap:  make(map[string]rcron.EntryID),
	}
}

func (s *Service) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	stopCh := make(chan struct{})
	s.mu.Lock()
	s.cancel = cancel
	s.stopCh = stopCh
	s.mu.Unlock()

	if err := s.load(); err != nil {
		log.Printf("[reminder] warning: failed to load reminders: %v", err)
	}

	s.cron = rcron.New(rcron.WithSeconds())

	s.mu.Lock()
	for i := range s.reminders {
		if s.reminders[i].Enabled && s.reminders[i].Schedule.Kind == KindCron {
			s.registerCron(&s.reminders[i])
		}
	}
	s.mu.Unlock()

	s.cron.Start()
	log.Printf("[reminder] started with %d reminders", len(s.reminders))

	go s.tickLoop(runCtx)

	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-stopCh:
			return
		}
	}()

	return nil
}

func (s *Service) registerCron(rem *Reminder) {
	remCopy := *rem
	id, err := s.cron.AddFunc(rem.Schedule.Expr, func() {
		s.fire(remCopy)
	})
	if err != nil {
		log.Printf("[reminder] failed to register %s (%s): %v", rem.ID, rem.Schedule.Expr, err)
		return
	}
	s.entryMap[rem.ID] = id
}

func (s *Service) fire(rem Reminder) {
	log.Printf("[reminder] firing %s: %s", rem.ID, truncate(rem.Text, 80))

	if s.OnRemind != nil {
		s.OnRemind(rem)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.reminders {
		if s.reminders[i].ID != rem.ID {
			continue
		}
		s.reminders[i].State.LastRunAtMs = time.Now().UnixMilli()
		s.reminders[i].State.LastStatus = "ok"
		// One-shots fire once and are disabled afterwards.
		if s.reminders[i].Schedule.Kind == KindAt {
			s.reminders[i].Enabled = false
		}
		break
	}

	_ = s.save()
}

func (s *Service) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now().UnixMilli()
			due := make([]Reminder, 0)
			s.mu.Lock()
			for i := range s.reminders {
				rem := &s.reminders[i]
				if !rem.Enabled || rem.Schedule.Kind != KindAt {
					continue
				}
				if rem.Schedule.AtMs > 0 && now >= rem.Schedule.AtMs {
					rem.Enabled = false
					due = append(due, *rem)
				}
			}
			s.mu.Unlock()
			for _, rem := range due {
				s.fire(rem)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *Service) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	stopCh := s.stopCh
	s.cancel = nil
	s.stopCh = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if stopCh != nil {
		close(stopCh)
	}

	if s.cron != nil {
		stopCtx := s.cron.Stop()
		select {
		case <-stopCtx.Done():
		case <-time.After(5 * time.Second):
			log.Printf("[reminder] stop timeout waiting for running jobs")
		}
	}
	log.Printf("[reminder] stopped")
}

func (s *Service) Add(text string, sched Schedule, delivery Delivery) (*Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rem := NewReminder(text, sched, delivery)
	s.reminders = append(s.reminders, rem)

	if rem.Schedule.Kind == KindCron && s.cron != nil {
		s.registerCron(&s.reminders[len(s.reminders)-1])
	}

	if err := s.save(); err != nil {
		return nil, fmt.Errorf("save reminders: %w", err)
	}

	return &rem, nil
}

func (s *Service) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, rem := range s.reminders {
		if rem.ID == id {
			if entryID, ok := s.entryMap[id]; ok && s.cron != nil {
				s.cron.Remove(entryID)
				delete(s.entryMap, id)
			}
			s.reminders = append(s.reminders[:i], s.reminders[i+1:]...)
			_ = s.save()
			return true
		}
	}
	return false
}

func (s *Service) List() []Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]Reminder, len(s.reminders))
	copy(result, s.reminders)
	return result
}

// Pending counts reminders still waiting to fire.
func (s *Service) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, rem := range s.reminders {
		if rem.Enabled {
			n++
		}
	}
	return n
}

func (s *Service) load() error {
	data, err := os.ReadFile(s.storePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, &s.reminders)
}

func (s *Service) save() error {
	dir := filepath.Dir(s.storePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s.reminders, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.storePath, data, 0644)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
