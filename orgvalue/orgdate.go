package orgvalue

import "time"

// OrgDate is a timestamp with an optional range end and an active/inactive flag.
type OrgDate struct {
	Start  time.Time
	End    *time.Time
	Active bool
}

func (*OrgDate) Kind() Kind { return KindOrgDate }
func (d *OrgDate) String() string {
	layout := "2006-01-02 Mon 15:04"
	if d.End != nil {
		return d.Start.Format(layout) + "--" + d.End.Format(layout)
	}
	return d.Start.Format(layout)
}

// OrgDateClock is a clocked-in/clocked-out time range.
type OrgDateClock struct {
	Start  time.Time
	End    time.Time
	Active bool
}

func (*OrgDateClock) Kind() Kind { return KindOrgDateClock }
func (c *OrgDateClock) String() string {
	layout := "2006-01-02 Mon 15:04"
	return c.Start.Format(layout) + "--" + c.End.Format(layout)
}

// OrgDateRepeatedTask records one completed occurrence of a repeating task.
type OrgDateRepeatedTask struct {
	Timestamp time.Time
	Before    string
	After     string
	Active    bool
}

func (*OrgDateRepeatedTask) Kind() Kind { return KindOrgDateRepeatedTask }
func (r *OrgDateRepeatedTask) String() string {
	return r.Before + " -> " + r.After + " @ " + r.Timestamp.Format("2006-01-02 Mon 15:04")
}

// OrgNode is one heading in a task tree.
type OrgNode struct {
	Heading        string
	Todo           *string // nil means none
	Tags           *Set
	Level          int
	Body           string
	Children       []*OrgNode
	Properties     *Dict
	Scheduled      *OrgDate
	Deadline       *OrgDate
	Closed         *OrgDate
	RepeatedTasks  []*OrgDateRepeatedTask
	Clocks         []*OrgDateClock
}

func (*OrgNode) Kind() Kind { return KindOrgNode }
func (n *OrgNode) String() string {
	prefix := ""
	if n.Todo != nil {
		prefix = *n.Todo + " "
	}
	return prefix + n.Heading
}

// Field looks up a named attribute on an OrgNode. Unknown names yield None,
// per spec.md §4.4's forgiving field-access contract.
func (n *OrgNode) Field(name string) Value {
	switch name {
	case "heading":
		return Str(n.Heading)
	case "todo":
		if n.Todo == nil {
			return None{}
		}
		return Str(*n.Todo)
	case "tags":
		if n.Tags == nil {
			return NewSet()
		}
		return n.Tags
	case "level":
		return Int(n.Level)
	case "body":
		return Str(n.Body)
	case "children":
		items := make([]Value, len(n.Children))
		for i, c := range n.Children {
			items[i] = c
		}
		return NewList(items...)
	case "properties":
		if n.Properties == nil {
			return NewDict()
		}
		return n.Properties
	case "scheduled":
		return orNone(n.Scheduled)
	case "deadline":
		return orNone(n.Deadline)
	case "closed":
		return orNone(n.Closed)
	case "repeated_tasks":
		items := make([]Value, len(n.RepeatedTasks))
		for i, r := range n.RepeatedTasks {
			items[i] = r
		}
		return NewList(items...)
	case "clocks":
		items := make([]Value, len(n.Clocks))
		for i, c := range n.Clocks {
			items[i] = c
		}
		return NewList(items...)
	default:
		return None{}
	}
}

func orNone(d *OrgDate) Value {
	if d == nil {
		return None{}
	}
	return d
}

// OrgRootNode is a file-rooted collection of top-level OrgNodes.
type OrgRootNode struct {
	Filename string
	Nodes    []*OrgNode
}

func (*OrgRootNode) Kind() Kind { return KindOrgRootNode }
func (r *OrgRootNode) String() string {
	return r.Filename
}

// Field exposes "filename" on an OrgRootNode; anything else is None, matching
// field access on an unrecognized attribute.
func (r *OrgRootNode) Field(name string) Value {
	if name == "filename" {
		return Str(r.Filename)
	}
	return None{}
}

// Len returns the number of top-level nodes, used by the `length` builtin.
func (r *OrgRootNode) Len() int { return len(r.Nodes) }
