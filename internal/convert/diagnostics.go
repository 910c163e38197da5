package convert

import "fmt"

// Condition is a recoverable problem met during conversion.
type Condition int

// Recoverable conditions.
const (
	// UnresolvedBonePath: a bone or track path matched no frame; a
	// placeholder identity was used.
	UnresolvedBonePath Condition = iota
	// UnresolvedMaterialReference: a submesh material slot was out of range
	// or empty; an unnamed default material was used.
	UnresolvedMaterialReference
	// MalformedCurveBinding: a generic curve sample had no usable binding
	// and was skipped.
	MalformedCurveBinding
	// DroppedFace: a face ran past the index buffer.
	DroppedFace
	// DroppedMorphVertex: a blend shape referenced a missing vertex or frame.
	DroppedMorphVertex
	// UnknownMorphChannel: a curve referenced a blend shape channel hash
	// that no converted mesh declares.
	UnknownMorphChannel

	numConditions
)

var conditionNames = [numConditions]string{
	UnresolvedBonePath:          "UnresolvedBonePath",
	UnresolvedMaterialReference: "UnresolvedMaterialReference",
	MalformedCurveBinding:       "MalformedCurveBinding",
	DroppedFace:                 "DroppedFace",
	DroppedMorphVertex:          "DroppedMorphVertex",
	UnknownMorphChannel:         "UnknownMorphChannel",
}

func (c Condition) String() string {
	if c < 0 || c >= numConditions {
		return fmt.Sprintf("Condition(%d)", int(c))
	}
	return conditionNames[c]
}

// Conditions lists every condition in declaration order.
func Conditions() []Condition {
	out := make([]Condition, numConditions)
	for i := range out {
		out[i] = Condition(i)
	}
	return out
}

// maxMessages bounds Diagnostics.Messages.
const maxMessages = 100

// Diagnostics counts the recoverable conditions of one pass and keeps the
// first messages.
type Diagnostics struct {
	counts   [numConditions]int
	Messages []string
}

// Count returns how often c occurred.
func (d *Diagnostics) Count(c Condition) int {
	if c < 0 || c >= numConditions {
		return 0
	}
	return d.counts[c]
}

// Total returns the number of recorded conditions.
func (d *Diagnostics) Total() int {
	n := 0
	for _, c := range d.counts {
		n += c
	}
	return n
}

func (d *Diagnostics) add(c Condition, msg string) {
	d.counts[c]++
	if len(d.Messages) < maxMessages {
		d.Messages = append(d.Messages, c.String()+": "+msg)
	}
}
