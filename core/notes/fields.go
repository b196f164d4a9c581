// Package notes parses the free-text release note of a ticket into its named
// fields and renders the two presentations used by the artifacts.
package notes

import "fmt"

// Field is one of the recognized release-note subfields.
type Field int

const (
	FieldDescription Field = iota
	FieldAffectedUsers
	FieldResult
	FieldNewPermission
	FieldNewMenuItem
	FieldNewProcedureType
	FieldTesting

	fieldCount
)

// Fields lists every field in keyword scan and column order.
var Fields = []Field{
	FieldDescription,
	FieldAffectedUsers,
	FieldResult,
	FieldNewPermission,
	FieldNewMenuItem,
	FieldNewProcedureType,
	FieldTesting,
}

var fieldKeys = [fieldCount]string{
	"description",
	"affectedUserGroup",
	"result",
	"newPermission",
	"newMenuItem",
	"newProcedureType",
	"testing",
}

// Key is the stable name of the field in Note.Values.
func (f Field) Key() string {
	if f < 0 || f >= fieldCount {
		return fmt.Sprintf("field(%d)", int(f))
	}
	return fieldKeys[f]
}

// Keywords holds the label that introduces each field in note text, indexed
// by Field.
type Keywords [fieldCount]string

// Label returns the keyword of f.
func (k Keywords) Label(f Field) string {
	if f < 0 || f >= fieldCount {
		return ""
	}
	return k[f]
}

var (
	EnglishKeywords = Keywords{
		"Description of change",
		"Affected user group",
		"Result of change",
		"New permission",
		"New menu item",
		"New procedure type",
		"Testing",
	}
	HungarianKeywords = Keywords{
		"Fejlesztés/javítás leírása",
		"Érintett felhasználói kör",
		"Fejlesztés/javítás eredménye",
		"Új elemi jog",
		"Új menüpont",
		"Új eljárástípus",
		"Tesztelés",
	}
)

// KeywordPreset returns a built-in keyword set by name ("en" or "hu").
func KeywordPreset(name string) (Keywords, error) {
	switch name {
	case "", "en":
		return EnglishKeywords, nil
	case "hu":
		return HungarianKeywords, nil
	default:
		return Keywords{}, fmt.Errorf("unknown keyword preset %q", name)
	}
}
