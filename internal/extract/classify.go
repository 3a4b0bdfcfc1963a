package extract

import (
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// Action tags a proposed operation.
type Action string

const (
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Operation is a validated proposed operation. For deletes, Key is a search
// term matched against both the key and value columns; it may be a field
// label or a value fragment, and the engine does not disambiguate.
type Operation struct {
	Action Action `json:"action"`
	Key    string `json:"key"`
	Value  string `json:"value,omitempty"`
}

// maxValueRunes bounds an update value; values of this length or longer are
// rejected.
const maxValueRunes = 100

// placeholderDenylist rejects interrogative tokens the model sometimes
// echoes back as a "value" when the user asked a question.
var placeholderDenylist = map[string]struct{}{
	"什麼": {},
	"誰":  {},
	"哪":  {},
}

// ClassifyOperations turns parsed elements into typed operations, dropping
// anything malformed. Order is preserved and nothing is deduplicated;
// upserts and fuzzy deletes make later duplicates harmless.
func ClassifyOperations(elements []gjson.Result) []Operation {
	var ops []Operation
	for _, el := range elements {
		action := el.Get("action").String()
		if action == "" {
			// Backward-compatible default.
			action = string(ActionUpdate)
		}
		key := el.Get("key").String()

		switch Action(action) {
		case ActionDelete:
			if key == "" {
				continue
			}
			ops = append(ops, Operation{Action: ActionDelete, Key: key})

		case ActionUpdate:
			value := el.Get("value")
			if !value.Exists() {
				continue
			}
			rendered := value.String()
			if rendered == "" || utf8.RuneCountInString(rendered) >= maxValueRunes {
				continue
			}
			if _, denied := placeholderDenylist[rendered]; denied {
				continue
			}
			ops = append(ops, Operation{Action: ActionUpdate, Key: key, Value: rendered})

		default:
			// Unknown actions are dropped.
		}
	}
	return ops
}
