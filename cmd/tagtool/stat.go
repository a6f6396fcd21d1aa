package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/tagtools/tagfile"
	tagerrors "github.com/tagtools/tagfile/errors"
)

// BlockLen identifies a block of a file by its length.
type BlockLen struct {
	File   string
	Group  string
	Path   string
	Length int
}

func (b BlockLen) String() string {
	return fmt.Sprintf("%s:%s(%d)", b.Group, b.Path, b.Length)
}

// BlockLenCount holds the lengths of blocks. It encodes as a list of the
// largest blocks.
type BlockLenCount map[BlockLen]int

func (p BlockLenCount) MarshalJSON() ([]byte, error) {
	list := []BlockLen{}
	for k := range p {
		list = append(list, k)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Length != list[j].Length {
			return list[i].Length > list[j].Length
		}
		if list[i].File != list[j].File {
			return list[i].File < list[j].File
		}
		return list[i].Path < list[j].Path
	})
	if len(list) > 20 {
		list = list[:20]
	}
	return json.Marshal(list)
}

type Stats struct {
	// Number of files given.
	FileCount int

	// Number of files that could not be parsed.
	FailedCount int

	// Number of warnings overall.
	WarningCount int

	// Number of files per group and engine.
	GroupCount  map[string]int
	EngineCount map[string]int

	// Number of elements overall, including the top-level elements.
	ElementCount int

	// Number of fields per value type.
	TypeCount map[string]int

	ReferenceCount     int
	NullReferenceCount int

	// Number of bytes of raw data overall.
	RawLength int

	LargestBlocks BlockLenCount `json:",omitempty"`
}

func newStats() *Stats {
	return &Stats{
		GroupCount:    map[string]int{},
		EngineCount:   map[string]int{},
		TypeCount:     map[string]int{},
		LargestBlocks: BlockLenCount{},
	}
}

// Add accumulates the statistics of a processed file.
func (s *Stats) Add(o outcome) {
	s.FileCount++
	s.WarningCount += len(tagerrors.List(o.Warn))
	if o.Err != nil || o.Tree == nil {
		s.FailedCount++
		return
	}
	group := o.Tree.Header.Group.String()
	s.GroupCount[group]++
	s.EngineCount[o.Tree.Header.Engine.String()]++
	s.ElementCount++
	o.Tree.Root.Walk(func(path string, value tagfile.Value) bool {
		s.TypeCount[value.Type().String()]++
		switch value := value.(type) {
		case *tagfile.TagRef:
			if value.IsNull() {
				s.NullReferenceCount++
			} else {
				s.ReferenceCount++
			}
		case *tagfile.Raw:
			s.RawLength += len(value.Data)
		case *tagfile.Block:
			s.ElementCount += value.Len()
			if value.Len() > 0 {
				s.LargestBlocks[BlockLen{
					File:   o.Path,
					Group:  group,
					Path:   path,
					Length: value.Len(),
				}]++
			}
		}
		return true
	})
}

func (t *tool) stat(c *cli.Context) error {
	paths, err := files(c)
	if err != nil {
		return err
	}
	stats := newStats()
	for _, o := range t.batch(c.Context, paths, func(o *outcome, b []byte) { decode(o, b) }) {
		if o.Err != nil {
			t.log.WithError(o.Err).WithField("file", o.Path).Warn("cannot parse file")
		}
		stats.Add(o)
	}

	je := json.NewEncoder(t.out)
	je.SetEscapeHTML(false)
	je.SetIndent("", "\t")
	if err := je.Encode(stats); err != nil {
		return errors.Wrap(err, "write stats")
	}
	return nil
}
