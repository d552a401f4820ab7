package gemini

// Schema is the subset of the OpenAPI schema object accepted as a
// response schema.
type Schema struct {
	Type       string             `json:"type"`
	Properties map[string]*Schema `json:"properties,omitempty"`
	Items      *Schema            `json:"items,omitempty"`
	Required   []string           `json:"required,omitempty"`
}

func str() *Schema    { return &Schema{Type: "STRING"} }
func number() *Schema { return &Schema{Type: "NUMBER"} }

func arrayOf(items *Schema) *Schema {
	return &Schema{Type: "ARRAY", Items: items}
}

func object(props map[string]*Schema, required ...string) *Schema {
	return &Schema{Type: "OBJECT", Properties: props, Required: required}
}

var planSchema = object(map[string]*Schema{
	"feedback": str(),
	"plans": arrayOf(object(map[string]*Schema{
		"id":          str(),
		"title":       str(),
		"description": str(),
		"buckets": arrayOf(object(map[string]*Schema{
			"id":      str(),
			"name":    str(),
			"icon":    str(),
			"percent": number(),
		}, "id", "name", "icon", "percent")),
	}, "id", "title", "description", "buckets")),
}, "feedback", "plans")

var adviceSchema = arrayOf(str())

var suggestionSchema = arrayOf(object(map[string]*Schema{
	"text": str(),
	"action": object(map[string]*Schema{
		"type":           str(),
		"fromId":         str(),
		"toId":           str(),
		"amount":         number(),
		"newTarget":      number(),
		"targetBucketId": str(),
	}),
}, "text"))
