package notification

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// MemoryStorage keeps the configuration in memory.
// Suitable for development, tests and YAML-seeded deployments.
type MemoryStorage struct {
	mu            sync.RWMutex
	notifications map[string]Notification
	gateways      map[string]GatewayConfig
	messages      map[string]Message
	messageOrder  []string
	languages     map[string][]Language // messageID -> variants
	files         map[uuid.UUID]string
}

var (
	_ Storage = (*MemoryStorage)(nil)
	_ Writer  = (*MemoryStorage)(nil)
)

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		notifications: make(map[string]Notification),
		gateways:      make(map[string]GatewayConfig),
		messages:      make(map[string]Message),
		languages:     make(map[string][]Language),
		files:         make(map[uuid.UUID]string),
	}
}

func (s *MemoryStorage) FindNotification(_ context.Context, id string) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notifications[id]
	if !ok {
		return nil, fmt.Errorf("%w: notification %q", ErrNotFound, id)
	}
	return &n, nil
}

func (s *MemoryStorage) FindMessages(_ context.Context, notificationID string) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Message{}
	for _, id := range s.messageOrder {
		if m := s.messages[id]; m.NotificationID == notificationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *MemoryStorage) FindGateway(_ context.Context, id string) (*GatewayConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.gateways[id]
	if !ok {
		return nil, fmt.Errorf("%w: gateway %q", ErrNotFound, id)
	}
	return &g, nil
}

func (s *MemoryStorage) FindLanguage(_ context.Context, messageID, code string) (*Language, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return ResolveLanguage(s.languages[messageID], code)
}

func (s *MemoryStorage) FindAttachmentPathsByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[uuid.UUID]string, len(ids))
	for _, id := range ids {
		if p, ok := s.files[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (s *MemoryStorage) SaveNotification(_ context.Context, n Notification) error {
	if err := n.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[n.ID] = n
	return nil
}

func (s *MemoryStorage) SaveGateway(_ context.Context, g GatewayConfig) error {
	if err := g.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.gateways[g.ID] = g
	return nil
}

func (s *MemoryStorage) SaveMessage(_ context.Context, m Message) error {
	if err := m.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notifications[m.NotificationID]; !ok {
		return fmt.Errorf("%w: notification %q", ErrNotFound, m.NotificationID)
	}
	if _, ok := s.gateways[m.GatewayID]; !ok {
		return fmt.Errorf("%w: gateway %q", ErrNotFound, m.GatewayID)
	}
	if _, exists := s.messages[m.ID]; !exists {
		s.messageOrder = append(s.messageOrder, m.ID)
	}
	s.messages[m.ID] = m
	return nil
}

func (s *MemoryStorage) SaveLanguage(_ context.Context, l Language) error {
	if err := l.Validate(); err != nil {
		return err
	}
	l.Attachments = slices.Clone(l.Attachments)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.messages[l.MessageID]; !ok {
		return fmt.Errorf("%w: message %q", ErrNotFound, l.MessageID)
	}

	variants := s.languages[l.MessageID]
	idx := -1
	for i, v := range variants {
		if v.ID == l.ID {
			idx = i
			continue
		}
		if l.Fallback && v.Fallback {
			return fmt.Errorf("%w: message %q", ErrDuplicateFallback, l.MessageID)
		}
	}

	if idx >= 0 {
		variants[idx] = l
	} else {
		variants = append(variants, l)
	}
	s.languages[l.MessageID] = variants
	return nil
}

func (s *MemoryStorage) SaveAttachmentPath(_ context.Context, id uuid.UUID, path string) error {
	if id == uuid.Nil || path == "" {
		return fmt.Errorf("%w: attachment needs id and path", ErrInvalidModel)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[id] = path
	return nil
}

// NotificationIDs lists the stored notification ids in sorted order.
func (s *MemoryStorage) NotificationIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.notifications))
}
