package database

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/amoylab/coursechat/internal/common/cnst"
	"github.com/amoylab/coursechat/pkg/directive"
)

type (
	// Catalog is the seed data of the development backend
	Catalog struct {
		Prompts  map[string]string `yaml:"prompts"` // prompt key -> global prefix
		Personas []CatalogPersona  `yaml:"personas"`
		Rules    []CatalogRule     `yaml:"rules"`
		Media    []CatalogMedia    `yaml:"media"`
		Courses  []CatalogCourse   `yaml:"courses"`
	}

	CatalogPersona struct {
		ID           string `yaml:"id"`
		Name         string `yaml:"name"`
		SystemPrompt string `yaml:"system_prompt"`
	}

	// CatalogRule answers queries containing any keyword. Show or Offer
	// append a directive marker to the reply.
	CatalogRule struct {
		Persona  string        `yaml:"persona"`
		Keywords []string      `yaml:"keywords"`
		Reply    string        `yaml:"reply"`
		Priority int           `yaml:"priority"`
		Show     *CatalogShow  `yaml:"show"`
		Offer    *CatalogOffer `yaml:"offer"`
	}

	CatalogShow struct {
		Type string `yaml:"type"`
		Tag  string `yaml:"tag"`
	}

	CatalogOffer struct {
		Types []string `yaml:"types"`
		Tag   string   `yaml:"tag"`
	}

	CatalogMedia struct {
		Type     string   `yaml:"type"`
		Tags     []string `yaml:"tags"`
		MediaURL string   `yaml:"media_url"`
		Title    string   `yaml:"title"`
		Caption  string   `yaml:"caption"`
		Syllabus any      `yaml:"syllabus"` // list of {title, description}, or a raw JSON string
	}

	CatalogCourse struct {
		Name             string `yaml:"name"`
		Location         string `yaml:"location"`
		Length           string `yaml:"length"`
		StartDate        string `yaml:"start_date"` // 2006-01-02
		RegistrationLink string `yaml:"registration_link"`
	}
)

// LoadCatalog reads a catalog YAML file
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	return &c, nil
}

// reply renders the rule reply with its directive marker
func (r *CatalogRule) reply() (string, error) {
	var d *directive.Directive
	switch {
	case r.Show != nil && r.Offer != nil:
		return "", fmt.Errorf("rule %v has both show and offer", r.Keywords)
	case r.Show != nil:
		kind, ok := directive.ParseKind(r.Show.Type)
		if !ok {
			return "", fmt.Errorf("rule %v: unknown show type %q", r.Keywords, r.Show.Type)
		}
		d = &directive.Directive{Kind: kind, Tag: r.Show.Tag}
	case r.Offer != nil:
		d = &directive.Directive{Kind: cnst.KindOffer, Tag: r.Offer.Tag}
		for _, t := range r.Offer.Types {
			kind, ok := directive.ParseKind(t)
			if !ok {
				return "", fmt.Errorf("rule %v: unknown offer type %q", r.Keywords, t)
			}
			d.Types = append(d.Types, kind)
		}
	}
	if d == nil {
		return r.Reply, nil
	}
	return strings.TrimSpace(r.Reply + " " + directive.Marker(*d)), nil
}

func (m *CatalogMedia) syllabusJSON() (string, error) {
	switch v := m.Syllabus.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		b, err := json.Marshal(v)
		return string(b), err
	}
}

// Seed loads catalog into empty tables; tables that already hold rows are left alone
func (d *DB) Seed(ctx context.Context, c *Catalog) (bool, error) {
	seeded := false
	err := d.Transaction(ctx, func(ctx context.Context) error {
		db := getDBFromContext(ctx, d.db)

		empty := func(model any) (bool, error) {
			var n int64
			err := db.Model(model).Count(&n).Error
			return n == 0, err
		}

		if ok, err := empty(&Prompt{}); err != nil {
			return err
		} else if ok && len(c.Prompts) > 0 {
			rows := make([]*Prompt, 0, len(c.Prompts))
			for k, v := range c.Prompts {
				rows = append(rows, &Prompt{Key: k, Text: v})
			}
			if err := db.Create(rows).Error; err != nil {
				return err
			}
			seeded = true
		}

		if ok, err := empty(&Persona{}); err != nil {
			return err
		} else if ok && len(c.Personas) > 0 {
			rows := make([]*Persona, len(c.Personas))
			for i, p := range c.Personas {
				rows[i] = &Persona{ID: p.ID, Name: p.Name, SystemPrompt: p.SystemPrompt}
			}
			if err := db.Create(rows).Error; err != nil {
				return err
			}
			seeded = true
		}

		if ok, err := empty(&Rule{}); err != nil {
			return err
		} else if ok && len(c.Rules) > 0 {
			rows := make([]*Rule, len(c.Rules))
			for i := range c.Rules {
				r := &c.Rules[i]
				reply, err := r.reply()
				if err != nil {
					return err
				}
				rows[i] = &Rule{PersonaID: r.Persona, Keywords: joinList(r.Keywords), Reply: reply, Priority: r.Priority}
			}
			if err := db.Create(rows).Error; err != nil {
				return err
			}
			seeded = true
		}

		if ok, err := empty(&MediaAsset{}); err != nil {
			return err
		} else if ok && len(c.Media) > 0 {
			rows := make([]*MediaAsset, len(c.Media))
			for i := range c.Media {
				m := &c.Media[i]
				syllabus, err := m.syllabusJSON()
				if err != nil {
					return err
				}
				rows[i] = &MediaAsset{
					ID:           uuid.NewString(),
					MediaType:    strings.ToLower(m.Type),
					Tags:         joinList(m.Tags),
					Position:     i,
					MediaURL:     m.MediaURL,
					Title:        m.Title,
					Caption:      m.Caption,
					SyllabusJSON: syllabus,
				}
			}
			if err := db.Create(rows).Error; err != nil {
				return err
			}
			seeded = true
		}

		if ok, err := empty(&Course{}); err != nil {
			return err
		} else if ok && len(c.Courses) > 0 {
			rows := make([]*Course, len(c.Courses))
			for i, cc := range c.Courses {
				start, err := time.Parse(time.DateOnly, cc.StartDate)
				if err != nil {
					return fmt.Errorf("course %q: invalid start_date: %w", cc.Name, err)
				}
				rows[i] = &Course{
					ID:               uuid.NewString(),
					Name:             cc.Name,
					Location:         cc.Location,
					Length:           cc.Length,
					StartDate:        start,
					RegistrationLink: cc.RegistrationLink,
				}
			}
			if err := db.Create(rows).Error; err != nil {
				return err
			}
			seeded = true
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to seed catalog: %w", err)
	}
	if seeded {
		d.logger.Info("catalog seeded",
			zap.Int("personas", len(c.Personas)),
			zap.Int("rules", len(c.Rules)),
			zap.Int("media", len(c.Media)),
			zap.Int("courses", len(c.Courses)))
	}
	return seeded, nil
}
