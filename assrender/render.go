package assrender

import (
	"math"
	"strings"

	"github.com/npillmayer/assgo/assanalysis"
	"github.com/npillmayer/assgo/assissue"
	"github.com/npillmayer/assgo/assparse"
	"github.com/npillmayer/assgo/asstag"
)

// QualityLevel is a rung on the performance-degradation ladder (spec.md §9's
// "ass-render performance degradation ladder", SPEC_FULL.md §3): C8's
// performance monitor raises Options.QualityFloor when frames are running
// over budget, and C7 consults it to shed the most expensive effects first.
type QualityLevel int

const (
	QualityFull QualityLevel = iota
	QualitySkipBlur
	QualitySkipRotation
	QualityFlatten // render every event as its fallback rectangles, skipping real glyphs entirely
)

// Options configures a Renderer.
type Options struct {
	QualityFloor QualityLevel
}

// Segment is a literal text run rendered under one fixed StyleState (spec.md
// §4.6 step 2).
type Segment struct {
	Text  string
	State StyleState
}

// RenderedLine is one active dialogue event's resolved render plan (spec.md
// §4.6 steps 1-3).
type RenderedLine struct {
	Event    *assparse.Event
	Segments []Segment
	Alpha    float64 // line-level fade alpha, [0,1]
}

// Renderer rasterizes Scripts into Frames (spec.md §4.6). It owns the font
// stack and glyph cache for its lifetime; construct one per independent
// rendering pipeline (e.g. one per playback session), not one per frame.
type Renderer struct {
	fonts *FontStack
	cache *GlyphCache
	opts  Options
}

// NewRenderer builds a Renderer over fonts. A nil or empty fonts uses the
// constant-rectangle fallback path for every character (spec.md §4.6
// "Fallback").
func NewRenderer(fonts *FontStack, opts Options) *Renderer {
	if fonts == nil {
		fonts = NewFontStack()
	}
	return &Renderer{fonts: fonts, cache: NewGlyphCache(defaultL2()), opts: opts}
}

// SetQualityFloor updates the degradation-ladder rung this Renderer
// consults on every subsequent RenderFrame call (SPEC_FULL.md §3's
// supplemented performance-degradation ladder). A realtime orchestrator's
// performance monitor calls this as frame times drift over or back under
// budget.
func (r *Renderer) SetQualityFloor(level QualityLevel) {
	r.opts.QualityFloor = level
}

// QualityFloor reports the degradation-ladder rung currently in force.
func (r *Renderer) QualityFloor() QualityLevel {
	return r.opts.QualityFloor
}

// WarmASCII pre-caches the printable ASCII range for every registered face
// at sizePx (spec.md §4.6's "pre-cached at common sizes at construction
// time").
func (r *Renderer) WarmASCII(sizePx int) {
	r.fonts.mu.RLock()
	faces := append([]*Face(nil), r.fonts.faces...)
	r.fonts.mu.RUnlock()
	for _, f := range faces {
		r.cache.WarmASCII(f, f.index, sizePx)
	}
}

func resolveStylesByName(script *assparse.Script) map[string]*assanalysis.ResolvedStyle {
	out := make(map[string]*assanalysis.ResolvedStyle)
	for _, st := range script.AllStyles() {
		rs := assanalysis.ResolveStyle(st)
		out[strings.ToLower(rs.Name)] = rs
	}
	return out
}

var defaultResolvedStyle = assanalysis.ResolveStyle(&assparse.Style{Fields: map[string]string{}})

func styleFor(name string, byName map[string]*assanalysis.ResolvedStyle) *assanalysis.ResolvedStyle {
	if rs, ok := byName[strings.ToLower(name)]; ok {
		return rs
	}
	if rs, ok := byName["default"]; ok {
		return rs
	}
	return defaultResolvedStyle
}

// RenderFrame renders every dialogue event active at t (spec.md §4.6's
// "Inputs"/"Event scheduling"). t is in seconds; W, H are pixels; baseSize
// is the reference font size a style's own Fontsize is scaled against
// (effective pixel size = baseSize * (style_size/32)).
func (r *Renderer) RenderFrame(script *assparse.Script, t float64, W, H int, baseSize float64) (*Frame, []assissue.Issue) {
	col := &assissue.Collector{}
	frame := NewFrame(W, H)
	if script == nil {
		return frame, col.Issues()
	}
	stylesByName := resolveStylesByName(script)

	for _, ev := range script.AllEvents() {
		if ev.Kind != assparse.Dialogue {
			continue
		}
		timing := assanalysis.ParseTiming(ev, col)
		if !timing.Valid {
			continue
		}
		startSec, endSec := timing.Start.Seconds(), timing.End.Seconds()
		if t < startSec || t > endSec {
			continue
		}
		line := r.buildLine(ev, timing, stylesByName, t, col)
		r.drawLine(frame, line, baseSize)
	}
	return frame, col.Issues()
}

// buildLine walks one active event's text, applying tag handlers to a
// running StyleState and emitting literal-text Segments (spec.md §4.6
// steps 1-3).
func (r *Renderer) buildLine(ev *assparse.Event, timing assanalysis.EventTiming, stylesByName map[string]*assanalysis.ResolvedStyle, t float64, col *assissue.Collector) RenderedLine {
	styleName, _ := ev.Get("Style")
	base := styleFor(styleName, stylesByName)
	state := NewStyleState(base, stylesByName)

	tokens, tcol := asstag.Tokenize(ev.Text(), asstag.Default)
	col.Merge(tcol)

	relMs := (t - timing.Start.Seconds()) * 1000
	var segments []Segment
	for _, tok := range tokens {
		switch tok.Kind {
		case asstag.TokenBlock:
			for _, tag := range tok.Tags {
				if tag.Handler == nil {
					col.Add(assissue.CodeUnknownTag, assissue.Warning, tag.NameSpan, "unsupported override tag %q during render", tag.Name)
					continue
				}
				if err := tag.Handler.Apply(tag.Args, state, relMs); err != nil {
					col.Add(assissue.CodeInvalidTag, assissue.Warning, tag.ArgsSpan, "applying tag %q: %v", tag.Name, err)
				}
				if tag.Name == "frx" || tag.Name == "fry" {
					col.Add(CodeAnimationSimplified, assissue.Info, tag.NameSpan, "x/y rotation %q accepted but rendered as a Z rotation (spec.md §4.6)", tag.Name)
				}
			}
		case asstag.TokenLiteral:
			text := expandLiteral(tok.Literal)
			if text == "" {
				continue
			}
			segments = append(segments, Segment{Text: text, State: state.Snapshot()})
		}
	}

	alpha := computeFadeAlpha(state, t, timing.Start.Seconds(), timing.End.Seconds())
	return RenderedLine{Event: ev, Segments: segments, Alpha: alpha}
}

// expandLiteral expands the three dialogue-text escapes outside override
// blocks (\N, \n -> newline, \h -> a non-breaking space), mirroring
// asstag.PlainText's private expandEscapes since Tokenize deliberately
// leaves TokenLiteral text unexpanded (spec.md §4.2).
func expandLiteral(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'N', 'n':
				b.WriteByte('\n')
				i += 2
				continue
			case 'h':
				b.WriteRune(' ')
				i += 2
				continue
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// computeFadeAlpha implements spec.md §4.6's \fad formula: alpha is the
// lesser of the fade-in ratio and the fade-out ratio, each clamped to
// [0,1] and defaulting to 1 when no corresponding fade duration was set.
// Taking the minimum of the two ratios is equivalent to the spec's
// if-fade-in/elif-fade-out/else-1 phrasing whenever the two windows don't
// overlap (the normal case), and degrades gracefully when they do.
func computeFadeAlpha(state *StyleState, t, startSec, endSec float64) float64 {
	if !state.HasFade {
		return 1
	}
	relStartMs := (t - startSec) * 1000
	relEndMs := (endSec - t) * 1000

	alphaIn := 1.0
	if state.FadeIn > 0 {
		alphaIn = clamp01(relStartMs / state.FadeIn)
	}
	alphaOut := 1.0
	if state.FadeOut > 0 {
		alphaOut = clamp01(relEndMs / state.FadeOut)
	}
	return math.Min(alphaIn, alphaOut)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (r *Renderer) effectiveSizePx(state StyleState, baseSize float64) int {
	sz := baseSize * (state.FontSize / 32)
	if sz < 1 {
		sz = 1
	}
	return int(math.Round(sz))
}

// segmentGlyph resolves one rune's bitmap under state, falling back to the
// constant rectangle when no font is registered, the style names an
// unregistered font (FontStack.Lookup's first-registered fallback already
// handles that), or the face lacks the rune outright.
func (r *Renderer) segmentGlyph(state StyleState, ch rune, baseSize float64) *GlyphBitmap {
	if r.opts.QualityFloor >= QualityFlatten || r.fonts.Empty() {
		return fallbackGlyph(ch)
	}
	face, ok := r.fonts.Lookup(state.FontName)
	if !ok {
		return fallbackGlyph(ch)
	}
	sizePx := r.effectiveSizePx(state, baseSize)
	bmp, err := r.cache.Get(face, face.index, ch, sizePx)
	if err != nil {
		return fallbackGlyph(ch)
	}
	return bmp
}

type lineMeasure struct {
	width, height, ascent float64
}

func (r *Renderer) measureLine(line RenderedLine, baseSize float64) lineMeasure {
	var width, maxHeight, maxAscent float64
	for _, seg := range line.Segments {
		scaleX := seg.State.ScaleX / 100
		if scaleX <= 0 {
			scaleX = 1
		}
		if !r.fonts.Empty() && r.opts.QualityFloor < QualityFlatten {
			if face, ok := r.fonts.Lookup(seg.State.FontName); ok {
				sizePx := r.effectiveSizePx(seg.State, baseSize)
				ascent, height := lineMetrics(face, sizePx)
				if height > maxHeight {
					maxHeight = height
				}
				if ascent > maxAscent {
					maxAscent = ascent
				}
			}
		} else {
			if fallbackGlyphHeight > maxHeight {
				maxHeight = fallbackGlyphHeight
			}
			if fallbackGlyphHeight > maxAscent {
				maxAscent = fallbackGlyphHeight
			}
		}
		for _, ch := range seg.Text {
			if ch == '\n' {
				continue
			}
			bmp := r.segmentGlyph(seg.State, ch, baseSize)
			width += bmp.Advance*scaleX + seg.State.Spacing
		}
	}
	if maxHeight == 0 {
		maxHeight = fallbackGlyphHeight
	}
	if maxAscent == 0 {
		maxAscent = maxHeight * 0.8
	}
	return lineMeasure{width: width, height: maxHeight, ascent: maxAscent}
}

// drawLine lays out and composites one RenderedLine onto frame (spec.md
// §4.6 Layout + Composition).
func (r *Renderer) drawLine(frame *Frame, line RenderedLine, baseSize float64) {
	if len(line.Segments) == 0 || line.Alpha <= 0 {
		return
	}
	measure := r.measureLine(line, baseSize)
	originX, originY := cursorOrigin(line.Segments[0].State, measure.width, measure.height, float64(frame.W), float64(frame.H))
	baselineY := originY + measure.ascent

	penX := originX
	for _, seg := range line.Segments {
		scaleX := seg.State.ScaleX / 100
		if scaleX <= 0 {
			scaleX = 1
		}
		drawDraws := seg.State.DrawScale != 0 // \p vector drawing: not rasterized, skip
		color := seg.State.Primary
		switch {
		case seg.State.AlphaOverall >= 0:
			color.A = uint8(255 - clamp01(seg.State.AlphaOverall/255)*255)
		case seg.State.AlphaPrimary >= 0:
			color.A = uint8(255 - clamp01(seg.State.AlphaPrimary/255)*255)
		}
		for _, ch := range seg.Text {
			if ch == '\n' {
				penX = originX
				continue
			}
			bmp := r.segmentGlyph(seg.State, ch, baseSize)
			if !drawDraws {
				frz, frx, fry := seg.State.FRZ, seg.State.FRX, seg.State.FRY
				if r.opts.QualityFloor >= QualitySkipRotation {
					frz, frx, fry = 0, 0, 0
				}
				// x/y rotation is folded into the same Z rotation path (spec.md
				// §4.6); the diagnostic for that was already recorded in
				// buildLine when the \frx/\fry tag was applied.
				compositeGlyph(frame, bmp, penX, baselineY, color, line.Alpha, frz, frx, fry)
			}
			penX += bmp.Advance*scaleX + seg.State.Spacing
		}
	}
}
