// Package mapping translates records between the Jira and Trello schemas.
// All functions are pure: they take fetched data and return patches, and
// never perform I/O themselves.
package mapping

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/desertthunder/tasksync/internal/models"
)

// backlinkPattern matches the Jira reference appended to card descriptions.
var backlinkPattern = regexp.MustCompile(`\[Jira Issue:.*\]$`)

// DefaultFieldMappings returns the built-in field translation table.
func DefaultFieldMappings() []models.FieldMapping {
	return []models.FieldMapping{
		{JiraField: "summary", TrelloField: "name"},
		{JiraField: "description", TrelloField: "desc"},
		{JiraField: "duedate", TrelloField: "due"},
		{JiraField: "assignee.displayName", TrelloField: "idMembers"},
	}
}

// DefaultStatusMappings returns the built-in status-to-list translation table.
func DefaultStatusMappings() []models.StatusMapping {
	return []models.StatusMapping{
		{JiraStatus: "To Do", TrelloStatus: "To Do"},
		{JiraStatus: "In Progress", TrelloStatus: "Doing"},
		{JiraStatus: "Done", TrelloStatus: "Done"},
		{JiraStatus: "Blocked", TrelloStatus: "Blocked"},
	}
}

// Mapper translates between the two schemas using a profile's mapping tables.
type Mapper struct {
	fieldMappings  []models.FieldMapping
	statusMappings []models.StatusMapping
}

// New creates a Mapper from a profile's mapping lists.
// Empty lists fall back to the built-in defaults.
func New(fields []models.FieldMapping, statuses []models.StatusMapping) *Mapper {
	if len(fields) == 0 {
		fields = DefaultFieldMappings()
	}
	if len(statuses) == 0 {
		statuses = DefaultStatusMappings()
	}
	return &Mapper{fieldMappings: fields, statusMappings: statuses}
}

// FieldMappings returns the active field translation table.
func (m *Mapper) FieldMappings() []models.FieldMapping { return m.fieldMappings }

// StatusMappings returns the active status translation table.
func (m *Mapper) StatusMappings() []models.StatusMapping { return m.statusMappings }

// Backlink returns the reference line appended to a card description so the
// originating issue can be recovered from the card alone.
func Backlink(key string) string {
	return fmt.Sprintf("\n\n[Jira Issue: %s]", key)
}

// StripBacklink removes a trailing issue reference from a card description.
// Descriptions without a reference pass through unchanged, so stripping is
// idempotent.
func StripBacklink(desc string) string {
	return strings.TrimSpace(backlinkPattern.ReplaceAllString(desc, ""))
}

// DateOnly truncates an ISO datetime to its date component.
// Already-truncated values pass through unchanged.
func DateOnly(s string) string {
	return strings.SplitN(s, "T", 2)[0]
}

// ResolvePath walks a dotted path through a generic field tree.
// The boolean is false when any segment is absent or not a map.
func ResolvePath(fields map[string]any, path string) (any, bool) {
	var value any = fields
	for _, part := range strings.Split(path, ".") {
		node, ok := value.(map[string]any)
		if !ok {
			return nil, false
		}
		value, ok = node[part]
		if !ok {
			return nil, false
		}
	}
	return value, true
}

// setPath assigns a value at a dotted path, creating intermediate maps.
func setPath(fields map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	node := fields
	for _, part := range parts[:len(parts)-1] {
		next, ok := node[part].(map[string]any)
		if !ok {
			next = map[string]any{}
			node[part] = next
		}
		node = next
	}
	node[parts[len(parts)-1]] = value
}

// asString renders a resolved field value for a card attribute.
// Maps and slices have no scalar rendering and are skipped.
func asString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case map[string]any, []any:
		return ""
	default:
		return fmt.Sprint(val)
	}
}

// TrelloStatusFor resolves a Jira status name to its Trello list name,
// matching case-insensitively.
func (m *Mapper) TrelloStatusFor(jiraStatus string) (string, bool) {
	for _, sm := range m.statusMappings {
		if strings.EqualFold(sm.JiraStatus, jiraStatus) {
			return sm.TrelloStatus, true
		}
	}
	return "", false
}

// JiraStatusFor resolves a Trello list name to its Jira status name,
// matching case-insensitively.
func (m *Mapper) JiraStatusFor(trelloStatus string) (string, bool) {
	for _, sm := range m.statusMappings {
		if strings.EqualFold(sm.TrelloStatus, trelloStatus) {
			return sm.JiraStatus, true
		}
	}
	return "", false
}

// IssueToCard translates a Jira issue into a Trello card patch.
//
// Each field mapping resolves its dotted path against the issue's field
// tree; absent or empty values produce no card attribute. The description
// gains a trailing backlink to the issue key. The issue status resolves
// through the status table and then case-insensitively against the supplied
// board lists; when either step finds no match the patch carries no list
// assignment.
func (m *Mapper) IssueToCard(issue models.Issue, lists []models.BoardList) models.CardPatch {
	patch := models.CardPatch{}

	for _, fm := range m.fieldMappings {
		raw, ok := ResolvePath(issue.Fields, fm.JiraField)
		if !ok {
			continue
		}
		value := asString(raw)
		if value == "" {
			continue
		}

		switch fm.TrelloField {
		case "name":
			patch["name"] = value
		case "desc":
			patch["desc"] = value + Backlink(issue.Key)
		case "due":
			patch["due"] = value
		case "labels":
			patch["labels"] = []models.Label{{Name: value}}
		}
	}

	if listName, ok := m.TrelloStatusFor(issue.StatusName()); ok {
		for _, list := range lists {
			if strings.EqualFold(list.Name, listName) {
				patch["idList"] = list.ID
				break
			}
		}
	}

	return patch
}

// CardToIssue translates a Trello card into a Jira issue patch.
//
// The backlink is stripped from the description exactly once, datetime due
// values are truncated to date-only, and the card's list resolves back to a
// Jira status name stored under the nested status field. Mapped values land
// at their dotted path in the field tree.
func (m *Mapper) CardToIssue(card models.Card, lists []models.BoardList) models.IssuePatch {
	patch := models.IssuePatch{Fields: map[string]any{}}

	for _, fm := range m.fieldMappings {
		var value string
		switch fm.TrelloField {
		case "name":
			value = card.Name
		case "desc":
			value = StripBacklink(card.Desc)
		case "due":
			value = DateOnly(card.Due)
		case "labels":
			if len(card.Labels) > 0 {
				value = card.Labels[0].Name
			}
		case "idMembers":
			if len(card.IDMembers) > 0 {
				value = card.IDMembers[0]
			}
		}
		if value == "" {
			continue
		}
		setPath(patch.Fields, fm.JiraField, value)
	}

	for _, list := range lists {
		if list.ID == card.IDList {
			if status, ok := m.JiraStatusFor(list.Name); ok {
				patch.Fields["status"] = map[string]any{"name": status}
			}
			break
		}
	}

	return patch
}
