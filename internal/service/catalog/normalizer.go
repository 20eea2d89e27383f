package catalog

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/kapu/fitplan-engine-go/internal/constants"
	"github.com/kapu/fitplan-engine-go/internal/domain"
	"github.com/kapu/fitplan-engine-go/internal/util"
	"go.uber.org/zap"
)

// upstreamExercise mirrors a wger exerciseinfo record. Only translations must
// decode; every other field is optional and decoded on its own so that one odd
// field does not cost the whole record.
type upstreamExercise struct {
	ID               json.RawMessage       `json:"id"`
	Translations     []upstreamTranslation `json:"translations"`
	Category         json.RawMessage       `json:"category"`
	Muscles          json.RawMessage       `json:"muscles"`
	MusclesSecondary json.RawMessage       `json:"muscles_secondary"`
	Equipment        json.RawMessage       `json:"equipment"`
	Images           json.RawMessage       `json:"images"`
	Videos           json.RawMessage       `json:"videos"`
}

type upstreamTranslation struct {
	Language    json.RawMessage `json:"language"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
}

type upstreamNamed struct {
	Name   string `json:"name"`
	NameEn string `json:"name_en"`
}

type upstreamImage struct {
	ID     int64  `json:"id"`
	Image  string `json:"image"`
	IsMain bool   `json:"is_main"`
}

type upstreamVideo struct {
	ID    int64  `json:"id"`
	Video string `json:"video"`
}

// Normalizer turns raw upstream records into CatalogEntry values.
type Normalizer struct {
	language string
	logger   *zap.Logger
}

func NewNormalizer(languageCode int, logger *zap.Logger) *Normalizer {
	return &Normalizer{
		language: strconv.Itoa(languageCode),
		logger:   logger,
	}
}

// Normalize returns false for records without a usable name in the target
// language. That is expected data, not an error.
func (n *Normalizer) Normalize(raw domain.RawRecord) (*domain.CatalogEntry, bool) {
	var rec upstreamExercise
	if err := json.Unmarshal(raw, &rec); err != nil {
		n.logger.Debug("Skipping undecodable catalog record", zap.Error(err))
		return nil, false
	}

	translation, ok := n.pickTranslation(rec.Translations)
	if !ok {
		return nil, false
	}

	entry := &domain.CatalogEntry{
		ID:               rawScalar(rec.ID),
		Name:             util.TitleCase(strings.TrimSpace(translation.Name)),
		Description:      constants.CatalogConfig.NoDescription,
		Category:         constants.CatalogConfig.UnknownCategory,
		PrimaryMuscles:   n.muscleNames(rec.Muscles),
		SecondaryMuscles: n.muscleNames(rec.MusclesSecondary),
		Equipment:        n.equipmentNames(rec.Equipment),
		Images:           n.images(rec.Images),
		Videos:           n.videos(rec.Videos),
	}

	if desc := strings.TrimSpace(translation.Description); desc != "" {
		entry.Description = desc
		entry.DescriptionText = htmlToText(desc)
	}

	var category upstreamNamed
	if n.decodeOptional(rec.Category, &category, "category") && strings.TrimSpace(category.Name) != "" {
		entry.Category = strings.TrimSpace(category.Name)
	}

	return entry, true
}

func (n *Normalizer) pickTranslation(translations []upstreamTranslation) (upstreamTranslation, bool) {
	for _, t := range translations {
		if rawScalar(t.Language) != n.language {
			continue
		}
		if strings.TrimSpace(t.Name) == "" {
			continue
		}
		return t, true
	}
	return upstreamTranslation{}, false
}

func (n *Normalizer) muscleNames(raw json.RawMessage) []string {
	var muscles []upstreamNamed
	n.decodeOptional(raw, &muscles, "muscles")

	names := make([]string, 0, len(muscles))
	for _, m := range muscles {
		name := strings.TrimSpace(m.NameEn)
		if name == "" {
			name = strings.TrimSpace(m.Name)
		}
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

func (n *Normalizer) equipmentNames(raw json.RawMessage) []string {
	var equipment []upstreamNamed
	n.decodeOptional(raw, &equipment, "equipment")

	names := make([]string, 0, len(equipment))
	for _, e := range equipment {
		if name := strings.TrimSpace(e.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func (n *Normalizer) images(raw json.RawMessage) []domain.MediaRef {
	var images []upstreamImage
	n.decodeOptional(raw, &images, "images")

	refs := make([]domain.MediaRef, 0, len(images))
	for _, img := range images {
		if img.Image == "" {
			continue
		}
		refs = append(refs, domain.MediaRef{ID: img.ID, URL: img.Image, IsMain: img.IsMain})
	}
	return refs
}

func (n *Normalizer) videos(raw json.RawMessage) []domain.MediaRef {
	var videos []upstreamVideo
	n.decodeOptional(raw, &videos, "videos")

	refs := make([]domain.MediaRef, 0, len(videos))
	for _, v := range videos {
		if v.Video == "" {
			continue
		}
		refs = append(refs, domain.MediaRef{ID: v.ID, URL: v.Video})
	}
	return refs
}

func (n *Normalizer) decodeOptional(raw json.RawMessage, dest any, field string) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		n.logger.Debug("Ignoring malformed catalog field", zap.String("field", field), zap.Error(err))
		return false
	}
	return true
}

// rawScalar renders a JSON string or number as plain text.
func rawScalar(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}

// htmlToText flattens the upstream rich-text description into one line.
func htmlToText(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}
	doc.Find("p, li, br, div, h1, h2, h3, h4, h5, h6").AfterHtml(" ")
	return strings.Join(strings.Fields(doc.Text()), " ")
}
