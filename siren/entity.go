package siren

// RelSelf is the relation naming an entity's canonical URL.
const RelSelf = "self"

// Entity is a Siren entity or embedded sub-entity.
type Entity struct {
	Class      []string       `json:"class,omitempty"`
	Title      string         `json:"title,omitempty"`
	Type       string         `json:"type,omitempty"`
	Rel        []string       `json:"rel,omitempty"`
	Href       string         `json:"href,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
	Entities   []*Entity      `json:"entities,omitempty"`
	Links      []Link         `json:"links,omitempty"`
	Actions    []Action       `json:"actions,omitempty"`
}

// Link is a navigational link.
type Link struct {
	Rel   []string `json:"rel"`
	Href  string   `json:"href"`
	Class []string `json:"class,omitempty"`
	Title string   `json:"title,omitempty"`
	Type  string   `json:"type,omitempty"`
}

// Action is a state transition the server offers on an entity.
type Action struct {
	Name   string   `json:"name"`
	Class  []string `json:"class,omitempty"`
	Method string   `json:"method,omitempty"`
	Href   string   `json:"href"`
	Title  string   `json:"title,omitempty"`
	Type   string   `json:"type,omitempty"`
	Fields []Field  `json:"fields,omitempty"`
}

// Field is an input accepted by an Action.
type Field struct {
	Name  string   `json:"name"`
	Class []string `json:"class,omitempty"`
	Type  string   `json:"type,omitempty"`
	Value any      `json:"value,omitempty"`
	Title string   `json:"title,omitempty"`
}

// IsLink reports whether e is an embedded link rather than a full
// representation.
func (e *Entity) IsLink() bool {
	return e != nil && e.Href != ""
}

// LinkByRel returns the first link carrying rel.
func (e *Entity) LinkByRel(rel string) (Link, bool) {
	if e == nil {
		return Link{}, false
	}
	for _, l := range e.Links {
		if l.HasRel(rel) {
			return l, true
		}
	}
	return Link{}, false
}

// HasLinkByRel reports whether e has a link carrying rel.
func (e *Entity) HasLinkByRel(rel string) bool {
	_, ok := e.LinkByRel(rel)
	return ok
}

// SelfHref returns the href of the self link, if any.
func (e *Entity) SelfHref() (string, bool) {
	l, ok := e.LinkByRel(RelSelf)
	if !ok || l.Href == "" {
		return "", false
	}
	return l.Href, true
}

// SubEntityByClass returns the first embedded sub-entity carrying class.
func (e *Entity) SubEntityByClass(class string) (*Entity, bool) {
	if e == nil {
		return nil, false
	}
	for _, sub := range e.Entities {
		if contains(sub.Class, class) {
			return sub, true
		}
	}
	return nil, false
}

// SubEntitiesByRel returns every embedded sub-entity carrying rel.
func (e *Entity) SubEntitiesByRel(rel string) []*Entity {
	if e == nil {
		return nil
	}
	var out []*Entity
	for _, sub := range e.Entities {
		if contains(sub.Rel, rel) {
			out = append(out, sub)
		}
	}
	return out
}

// ActionByName returns the action named name.
func (e *Entity) ActionByName(name string) (Action, bool) {
	if e == nil {
		return Action{}, false
	}
	for _, a := range e.Actions {
		if a.Name == name {
			return a, true
		}
	}
	return Action{}, false
}

// HasClass reports whether e carries class.
func (e *Entity) HasClass(class string) bool {
	return e != nil && contains(e.Class, class)
}

// HasRel reports whether l carries rel.
func (l Link) HasRel(rel string) bool {
	return contains(l.Rel, rel)
}

// FieldByName returns the field named name.
func (a Action) FieldByName(name string) (Field, bool) {
	for _, f := range a.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
