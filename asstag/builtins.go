package asstag

import (
	"strconv"
	"strings"

	"github.com/npillmayer/assgo/asscolor"
)

// genericHandler implements Handler for the built-in tags, which differ
// only in name, argument shape, animation support, and what they write
// into StateMutator.
type genericHandler struct {
	name     string
	kinds    []ArgKind
	animated bool
	apply    func(args Args, state StateMutator, tNowMs float64) error
}

func (h *genericHandler) Name() string            { return h.name }
func (h *genericHandler) ArgKinds() []ArgKind      { return h.kinds }
func (h *genericHandler) SupportsAnimation() bool  { return h.animated }
func (h *genericHandler) Apply(a Args, s StateMutator, t float64) error {
	return h.apply(a, s, t)
}

func boolArg(parts []string, def bool) bool {
	if len(parts) == 0 || parts[0] == "" {
		return def
	}
	return parts[0] != "0"
}

func floatArg(s string, def float64) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}

func intArg(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return int(v)
}

// builtinHandlers returns the tags this library implements out of the box
// (spec.md §4.6's in-scope override subset, plus the simple formatting and
// karaoke tags used for complexity scoring in §4.3).
func builtinHandlers() []Handler {
	simpleBool := func(name string, field string) Handler {
		return &genericHandler{name: name, kinds: []ArgKind{KindOptional, KindInteger}, apply: func(a Args, s StateMutator, _ float64) error {
			s.SetBool(field, boolArg(a.Parts, true))
			return nil
		}}
	}
	colorTag := func(name string, field string) Handler {
		return &genericHandler{name: name, kinds: []ArgKind{KindColor}, apply: func(a Args, s StateMutator, _ float64) error {
			raw := strings.TrimSpace(a.Raw)
			if raw == "" {
				return nil
			}
			if _, err := asscolor.Parse(raw); err != nil {
				return err
			}
			s.SetColor(field, raw)
			return nil
		}}
	}

	return []Handler{
		simpleBool("b", "bold"),
		simpleBool("i", "italic"),
		simpleBool("u", "underline"),
		simpleBool("s", "strikeout"),

		colorTag("c", "primary"),
		colorTag("1c", "primary"),
		colorTag("2c", "secondary"),
		colorTag("3c", "outline"),
		colorTag("4c", "shadow"),

		&genericHandler{name: "1a", kinds: []ArgKind{KindInteger}, apply: func(a Args, s StateMutator, _ float64) error {
			s.SetFloat("alpha_primary", float64(intArg(a.Raw, 0)))
			return nil
		}},
		&genericHandler{name: "alpha", kinds: []ArgKind{KindInteger}, apply: func(a Args, s StateMutator, _ float64) error {
			s.SetFloat("alpha", float64(intArg(a.Raw, 0)))
			return nil
		}},

		&genericHandler{name: "fs", kinds: []ArgKind{KindFloat}, apply: func(a Args, s StateMutator, _ float64) error {
			s.SetFloat("fontsize", floatArg(a.Raw, 0))
			return nil
		}},
		&genericHandler{name: "fn", kinds: []ArgKind{KindString}, apply: func(a Args, s StateMutator, _ float64) error {
			s.SetString("fontname", strings.TrimSpace(a.Raw))
			return nil
		}},
		&genericHandler{name: "fscx", kinds: []ArgKind{KindFloat}, apply: func(a Args, s StateMutator, _ float64) error {
			s.SetFloat("scale_x", floatArg(a.Raw, 100))
			return nil
		}},
		&genericHandler{name: "fscy", kinds: []ArgKind{KindFloat}, apply: func(a Args, s StateMutator, _ float64) error {
			s.SetFloat("scale_y", floatArg(a.Raw, 100))
			return nil
		}},
		&genericHandler{name: "fsp", kinds: []ArgKind{KindFloat}, apply: func(a Args, s StateMutator, _ float64) error {
			s.SetFloat("spacing", floatArg(a.Raw, 0))
			return nil
		}},
		&genericHandler{name: "bord", kinds: []ArgKind{KindFloat}, apply: func(a Args, s StateMutator, _ float64) error {
			s.SetFloat("outline", floatArg(a.Raw, 0))
			return nil
		}},
		&genericHandler{name: "shad", kinds: []ArgKind{KindFloat}, apply: func(a Args, s StateMutator, _ float64) error {
			s.SetFloat("shadow", floatArg(a.Raw, 0))
			return nil
		}},
		&genericHandler{name: "blur", kinds: []ArgKind{KindFloat}, apply: func(a Args, s StateMutator, _ float64) error {
			s.SetFloat("blur", floatArg(a.Raw, 0))
			return nil
		}},
		&genericHandler{name: "be", kinds: []ArgKind{KindInteger}, apply: func(a Args, s StateMutator, _ float64) error {
			s.SetFloat("blur_edges", float64(intArg(a.Raw, 0)))
			return nil
		}},

		&genericHandler{name: "frx", kinds: []ArgKind{KindFloat}, apply: func(a Args, s StateMutator, _ float64) error {
			s.SetRotation('x', floatArg(a.Raw, 0))
			return nil
		}},
		&genericHandler{name: "fry", kinds: []ArgKind{KindFloat}, apply: func(a Args, s StateMutator, _ float64) error {
			s.SetRotation('y', floatArg(a.Raw, 0))
			return nil
		}},
		&genericHandler{name: "frz", kinds: []ArgKind{KindFloat}, apply: func(a Args, s StateMutator, _ float64) error {
			s.SetRotation('z', floatArg(a.Raw, 0))
			return nil
		}},
		&genericHandler{name: "fr", kinds: []ArgKind{KindFloat}, apply: func(a Args, s StateMutator, _ float64) error {
			s.SetRotation('z', floatArg(a.Raw, 0))
			return nil
		}},

		&genericHandler{name: "an", kinds: []ArgKind{KindInteger}, apply: func(a Args, s StateMutator, _ float64) error {
			s.SetFloat("alignment", float64(intArg(a.Raw, 2)))
			return nil
		}},
		&genericHandler{name: "pos", kinds: []ArgKind{KindPosition}, apply: func(a Args, s StateMutator, _ float64) error {
			if len(a.Parts) != 2 {
				return nil
			}
			s.SetPosition(floatArg(a.Parts[0], 0), floatArg(a.Parts[1], 0))
			return nil
		}},
		&genericHandler{name: "move", kinds: []ArgKind{KindPosition, KindPosition, KindOptional, KindOptional}, animated: true,
			apply: func(a Args, s StateMutator, _ float64) error {
				if len(a.Parts) < 4 {
					return nil
				}
				t1, t2 := 0.0, 0.0
				if len(a.Parts) >= 6 {
					t1 = floatArg(a.Parts[4], 0)
					t2 = floatArg(a.Parts[5], 0)
				}
				s.SetMove(floatArg(a.Parts[0], 0), floatArg(a.Parts[1], 0), floatArg(a.Parts[2], 0), floatArg(a.Parts[3], 0), t1, t2)
				return nil
			}},
		&genericHandler{name: "fad", kinds: []ArgKind{KindInteger, KindInteger}, apply: func(a Args, s StateMutator, _ float64) error {
			if len(a.Parts) != 2 {
				return nil
			}
			s.SetFade(floatArg(a.Parts[0], 0), floatArg(a.Parts[1], 0))
			return nil
		}},
		&genericHandler{name: "fade", kinds: []ArgKind{KindVarArgs}, apply: func(a Args, s StateMutator, _ float64) error {
			// \fade(a1,a2,a3,t1,t2,t3,t4): approximate as a simple
			// fade-in/fade-out over [t1,t2] and [t3,t4].
			if len(a.Parts) != 7 {
				return nil
			}
			t1 := floatArg(a.Parts[3], 0)
			t2 := floatArg(a.Parts[4], 0)
			t3 := floatArg(a.Parts[5], 0)
			t4 := floatArg(a.Parts[6], 0)
			s.SetFade(t2-t1, t4-t3)
			return nil
		}},

		&genericHandler{name: "t", animated: true, kinds: []ArgKind{KindVarArgs}, apply: func(a Args, s StateMutator, tNow float64) error {
			// \t([t1,t2,][accel,]style-overrides): record as a generic
			// animation window carrying only t1 and t2. The embedded style
			// overrides are not parsed or applied, here or in assrender,
			// which keeps the window in StyleState.Animations without
			// evaluating it.
			t1, t2 := 0.0, 0.0
			if len(a.Parts) >= 3 {
				t1 = floatArg(a.Parts[0], 0)
				t2 = floatArg(a.Parts[1], 0)
			}
			s.SetAnimation("t", 0, 1, t1, t2)
			return nil
		}},

		karaokeHandler("k", "k"),
		karaokeHandler("kf", "kf"),
		karaokeHandler("ko", "ko"),
		karaokeHandler("kt", "kt"),

		&genericHandler{name: "p", kinds: []ArgKind{KindInteger}, apply: func(a Args, s StateMutator, _ float64) error {
			s.SetDraw(intArg(a.Raw, 0))
			return nil
		}},
		&genericHandler{name: "pbo", kinds: []ArgKind{KindFloat}, apply: func(a Args, s StateMutator, _ float64) error {
			s.SetFloat("draw_baseline_offset", floatArg(a.Raw, 0))
			return nil
		}},
		&genericHandler{name: "clip", kinds: []ArgKind{KindVarArgs}, apply: func(a Args, s StateMutator, _ float64) error {
			s.SetClip(a.Raw, false)
			return nil
		}},
		&genericHandler{name: "iclip", kinds: []ArgKind{KindVarArgs}, apply: func(a Args, s StateMutator, _ float64) error {
			s.SetClip(a.Raw, true)
			return nil
		}},
		&genericHandler{name: "r", kinds: []ArgKind{KindOptional, KindString}, apply: func(a Args, s StateMutator, _ float64) error {
			s.Reset()
			if strings.TrimSpace(a.Raw) != "" {
				s.SetString("reset_style", strings.TrimSpace(a.Raw))
			}
			return nil
		}},
	}
}

func karaokeHandler(name, kind string) Handler {
	return &genericHandler{name: name, kinds: []ArgKind{KindInteger}, animated: true, apply: func(a Args, s StateMutator, _ float64) error {
		s.SetKaraoke(kind, intArg(a.Raw, 0))
		return nil
	}}
}
