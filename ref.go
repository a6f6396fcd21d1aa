package tagfile

// TagRef is a reference from one tag file to another, identified by the group
// of the referent and its name. The name is a path relative to a tags
// directory, without an extension.
type TagRef struct {
	// Group is the tag group of the referent.
	Group Code

	// Address is a runtime value stored with the reference. It is not
	// interpreted.
	Address uint32

	// NameLength is the declared length of Name. It must equal len(Name) when
	// the tree is encoded.
	NameLength uint32

	// Salt is a runtime value stored with the reference. It is not
	// interpreted.
	Salt uint32

	// Name is the name of the referent.
	Name string
}

// NewTagRef returns a reference to the tag of the given group and name.
func NewTagRef(group Code, name string) *TagRef {
	r := &TagRef{Group: group}
	r.SetName(name)
	return r
}

func (*TagRef) Type() Type {
	return TypeTagRef
}

func (t *TagRef) String() string {
	if t.IsNull() {
		return "null"
	}
	return t.Group.String() + ":" + t.Name
}

func (t *TagRef) Copy() Value {
	c := *t
	return &c
}

// SetName sets the name of the reference, updating NameLength.
func (t *TagRef) SetName(name string) {
	t.Name = name
	t.NameLength = uint32(len(name))
}

// IsNull returns whether the reference does not refer to anything.
func (t *TagRef) IsNull() bool {
	return t == nil || t.NameLength == 0
}
