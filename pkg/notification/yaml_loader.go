package notification

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Seed is the YAML layout of a configuration file:
//
//	gateways:
//	  - id: mail
//	    type: email
//	files:
//	  - id: 6b0b5c1e-...
//	    path: files/terms.pdf
//	notifications:
//	  - id: member_registration
//	    type: member_registration
//	    messages:
//	      - id: welcome
//	        gateway_id: mail
//	        published: true
//	        languages:
//	          - id: welcome-en
//	            language: en
//	            fallback: true
//	            recipients: "##member_email##"
//	            subject: "Welcome ##member_firstname##"
//	            text: "..."
type Seed struct {
	Gateways      []GatewayConfig    `yaml:"gateways"`
	Files         []SeedFile         `yaml:"files"`
	Notifications []SeedNotification `yaml:"notifications"`
}

type SeedFile struct {
	ID   uuid.UUID `yaml:"id"`
	Path string    `yaml:"path"`
}

type SeedNotification struct {
	Notification `yaml:",inline"`
	Messages     []SeedMessage `yaml:"messages"`
}

type SeedMessage struct {
	Message   `yaml:",inline"`
	Languages []Language `yaml:"languages"`
}

// LoadYAML decodes a Seed from r and writes it to w, parents first.
// Nested messages and languages inherit their parent ids.
func LoadYAML(ctx context.Context, r io.Reader, w Writer) error {
	var seed Seed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil && err != io.EOF {
		return fmt.Errorf("%w: decode yaml: %v", ErrInvalidModel, err)
	}
	return seed.Apply(ctx, w)
}

// LoadYAMLFile is LoadYAML for a file on disk.
func LoadYAMLFile(ctx context.Context, path string, w Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return LoadYAML(ctx, f, w)
}

// Apply writes the seed to w.
func (s Seed) Apply(ctx context.Context, w Writer) error {
	for _, g := range s.Gateways {
		if err := w.SaveGateway(ctx, g); err != nil {
			return fmt.Errorf("gateway %q: %w", g.ID, err)
		}
	}
	for _, f := range s.Files {
		if err := w.SaveAttachmentPath(ctx, f.ID, f.Path); err != nil {
			return fmt.Errorf("file %q: %w", f.ID, err)
		}
	}
	for _, n := range s.Notifications {
		if err := w.SaveNotification(ctx, n.Notification); err != nil {
			return fmt.Errorf("notification %q: %w", n.ID, err)
		}
		for _, m := range n.Messages {
			m.NotificationID = n.ID
			if err := w.SaveMessage(ctx, m.Message); err != nil {
				return fmt.Errorf("message %q: %w", m.ID, err)
			}
			for _, l := range m.Languages {
				l.MessageID = m.ID
				if err := w.SaveLanguage(ctx, l); err != nil {
					return fmt.Errorf("language %q of message %q: %w", l.Language, m.ID, err)
				}
			}
		}
	}
	return nil
}
