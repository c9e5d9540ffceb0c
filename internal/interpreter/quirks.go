package interpreter

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownQuirk is returned when parsing an unsupported quirk name.
var ErrUnknownQuirk = errors.New("unknown quirk")

// Quirks selects between historically ambiguous instruction behaviors.
// The zero value is the modern interpretation used by most ROMs.
type Quirks struct {
	ShiftUsesVY              bool // 8xy6/8xyE shift Vy into Vx instead of shifting Vx
	LoadStoreIncrementsIndex bool // Fx55/Fx65 leave I pointing after the last register
	JumpUsesVX               bool // Bnnn jumps to nnn + Vx instead of nnn + V0
	LogicResetsVF            bool // 8xy1/8xy2/8xy3 clear VF
	ClipSprites              bool // Dxyn clips sprites at the screen edges instead of wrapping
	WaitForKeyRelease        bool // Fx0A completes when the pressed key is released
}

// Quirk presets of well known interpreters.
var (
	QuirksModern = Quirks{}

	QuirksCOSMAC = Quirks{
		ShiftUsesVY:              true,
		LoadStoreIncrementsIndex: true,
		LogicResetsVF:            true,
		ClipSprites:              true,
		WaitForKeyRelease:        true,
	}

	QuirksSuperChip = Quirks{
		JumpUsesVX:  true,
		ClipSprites: true,
	}
)

var quirkPresets = map[string]Quirks{
	"modern": QuirksModern,
	"cosmac": QuirksCOSMAC,
	"vip":    QuirksCOSMAC,
	"schip":  QuirksSuperChip,
}

type quirkFlag struct {
	name string
	flag func(q *Quirks) *bool
}

var quirkFlags = []quirkFlag{
	{"shift-vy", func(q *Quirks) *bool { return &q.ShiftUsesVY }},
	{"load-store-inc", func(q *Quirks) *bool { return &q.LoadStoreIncrementsIndex }},
	{"jump-vx", func(q *Quirks) *bool { return &q.JumpUsesVX }},
	{"logic-vf", func(q *Quirks) *bool { return &q.LogicResetsVF }},
	{"clip", func(q *Quirks) *bool { return &q.ClipSprites }},
	{"key-release", func(q *Quirks) *bool { return &q.WaitForKeyRelease }},
}

// ParseQuirks parses a preset name (modern, cosmac, vip, schip) or a comma
// separated list of quirk names. An empty string returns the modern preset.
func ParseQuirks(s string) (Quirks, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return QuirksModern, nil
	}
	if preset, ok := quirkPresets[s]; ok {
		return preset, nil
	}

	var q Quirks
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		found := false
		for _, qf := range quirkFlags {
			if qf.name == name {
				*qf.flag(&q) = true
				found = true
				break
			}
		}
		if !found {
			return Quirks{}, fmt.Errorf("%w: %s", ErrUnknownQuirk, name)
		}
	}
	return q, nil
}

// String returns the enabled quirks as a comma separated list.
func (q Quirks) String() string {
	var names []string
	for _, qf := range quirkFlags {
		if *qf.flag(&q) {
			names = append(names, qf.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}
