package drawing

import (
	"strconv"
	"strings"

	"github.com/vk/phasegrid/internal/binding"
)

// Equation renders a template in which every '$' is replaced by the next
// bound value, e.g. "$sin($x + $)" with amp, freq and phase.
type Equation struct {
	Template string
	Values   []*binding.Binding
}

func (e Equation) String() string {
	var sb strings.Builder
	next := 0
	for _, r := range e.Template {
		if r != '$' {
			sb.WriteRune(r)
			continue
		}
		if next >= len(e.Values) {
			sb.WriteByte('?')
			continue
		}
		sb.WriteString(strconv.FormatFloat(e.Values[next].Value(), 'f', 2, 64))
		next++
	}
	return sb.String()
}
