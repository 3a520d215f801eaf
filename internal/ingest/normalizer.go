package ingest

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/david/support-finder/internal/models"
)

// HTMLToText converts HTML to plain text, collapsing whitespace.
func HTMLToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return cleanText(html) // unparsable markup is kept as text
	}
	return cleanText(doc.Text())
}

// Normalize converts a raw dataset into canonical entities. It accepts
// {"entities": [...]}, an id-keyed map of records, or a flat list.
// Records without a usable id are dropped; everything else is defaulted.
func Normalize(raw any) []models.Entity {
	entities, _ := NormalizeWithReport(raw)
	return entities
}

// NormalizeWithReport is Normalize plus counts of what was kept and dropped.
func NormalizeWithReport(raw any) ([]models.Entity, Report) {
	var (
		rep   Report
		items []item
	)
	rep.Shape, items = enumerate(raw)

	out := make([]models.Entity, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		rep.Seen++
		rec, ok := asRecord(it.value)
		if !ok {
			rep.NotRecords++
			continue
		}

		e, ok := FromRecord(rec, it.key)
		if !ok {
			rep.MissingID++
			continue
		}
		if _, dup := seen[e.ID]; dup {
			rep.Duplicates++
			continue
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	rep.Kept = len(out)
	return out, rep
}

// item is one raw record plus the map key it was found under, if any.
type item struct {
	key   string
	value any
}

func enumerate(raw any) (Shape, []item) {
	switch v := raw.(type) {
	case []any:
		return ShapeList, listItems(v)
	case []map[string]any:
		items := make([]item, 0, len(v))
		for _, m := range v {
			items = append(items, item{value: m})
		}
		return ShapeList, items
	case []models.Entity:
		items := make([]item, 0, len(v))
		for _, e := range v {
			items = append(items, item{value: entityRecord(e)})
		}
		return ShapeList, items
	case Object:
		if list, ok := envelope(v.Get("entities")); ok {
			return ShapeEnvelope, listItems(list)
		}
		items := make([]item, 0, len(v))
		for _, kv := range v {
			items = append(items, item{key: kv.Key, value: kv.Value})
		}
		return ShapeIDMap, items
	case map[string]any:
		if list, ok := envelope(v["entities"], v["entities"] != nil); ok {
			return ShapeEnvelope, listItems(list)
		}
		items := make([]item, 0, len(v))
		for _, k := range sortedKeys(v) {
			items = append(items, item{key: k, value: v[k]})
		}
		return ShapeIDMap, items
	}
	return ShapeUnknown, nil
}

func envelope(v any, ok bool) ([]any, bool) {
	if !ok {
		return nil, false
	}
	switch l := v.(type) {
	case []any:
		return l, true
	case []map[string]any:
		out := make([]any, 0, len(l))
		for _, m := range l {
			out = append(out, m)
		}
		return out, true
	}
	return nil, false
}

func listItems(list []any) []item {
	items := make([]item, 0, len(list))
	for _, v := range list {
		items = append(items, item{value: v})
	}
	return items
}

// FromRecord builds an Entity from one raw record. fallbackID is used when
// the record has no id of its own (the key of an id-keyed map). It reports
// false when no usable id exists.
func FromRecord(rec map[string]any, fallbackID string) (models.Entity, bool) {
	r := record(rec)
	id := r.str("id", "_id", "ID")
	if id == "" {
		id = cleanText(fallbackID)
	}
	if id == "" {
		return models.Entity{}, false
	}

	e := models.Entity{
		ID:              id,
		Title:           r.text("title", "name"),
		Subtitle:        r.text("subtitle", "description"),
		Category:        r.str("category"),
		Location:        r.str("location", "city"),
		SupportTypes:    r.list("supportTypes", "support_types"),
		Type:            r.str("type", "courseType"),
		Specializations: r.list("specializations"),
		Contact:         contactOf(r),
		Urgency:         r.str("urgency"),
		Level:           r.list("level", "levels"),
		Online:          r.flag("online"),
		Cost:            r.str("cost", "price"),

		ForWomen:               r.flag("forWomen", "for_women"),
		ForYoungMigrants:       r.flag("forYoungMigrants", "for_young_migrants"),
		Childcare:              r.flag("childcare"),
		IntegrationRequirement: r.flag("integrationRequirement", "integration_requirement"),
	}
	if len(e.SupportTypes) == 0 {
		e.SupportTypes = asStringList(r["supportType"])
	}
	if e.SupportTypes == nil {
		e.SupportTypes = []string{}
	}

	ApplyDefaults(&e)
	return e, true
}

// ApplyDefaults fills the derived fields consumers rely on.
func ApplyDefaults(e *models.Entity) {
	primary := models.DefaultCategory
	if len(e.SupportTypes) > 0 {
		primary = e.SupportTypes[0]
	}
	if e.Category == "" {
		e.Category = primary
	}
	e.SupportType = primary
	if e.Urgency == "" {
		e.Urgency = models.UrgencyNonUrgent
	}
	if e.Title.IsEmpty() {
		e.Title = models.LocalizedText{models.DefaultLanguage: e.ID}
	}
}

func contactOf(r record) models.Contact {
	c := models.Contact{
		Phone:   r.str("phone"),
		Email:   r.str("email"),
		Website: r.str("website", "url"),
		Address: r.str("address"),
	}
	nested, ok := asRecord(r["contact"])
	if !ok {
		return c
	}
	if v := nested.str("phone"); v != "" {
		c.Phone = v
	}
	if v := nested.str("email"); v != "" {
		c.Email = v
	}
	if v := nested.str("website", "url"); v != "" {
		c.Website = v
	}
	if v := nested.str("address"); v != "" {
		c.Address = v
	}
	return c
}

// entityRecord lets already-canonical entities pass through Normalize.
func entityRecord(e models.Entity) map[string]any {
	return map[string]any{
		"id":                     e.ID,
		"title":                  e.Title,
		"subtitle":               e.Subtitle,
		"category":               e.Category,
		"location":               e.Location,
		"supportTypes":           toAnyList(e.SupportTypes),
		"type":                   e.Type,
		"specializations":        toAnyList(e.Specializations),
		"contact":                map[string]any{"phone": e.Contact.Phone, "email": e.Contact.Email, "website": e.Contact.Website, "address": e.Contact.Address},
		"urgency":                e.Urgency,
		"level":                  toAnyList(e.Level),
		"online":                 e.Online,
		"cost":                   e.Cost,
		"forWomen":               e.ForWomen,
		"forYoungMigrants":       e.ForYoungMigrants,
		"childcare":              e.Childcare,
		"integrationRequirement": e.IntegrationRequirement,
	}
}

func toAnyList(l []string) []any {
	out := make([]any, 0, len(l))
	for _, s := range l {
		out = append(out, s)
	}
	return out
}
