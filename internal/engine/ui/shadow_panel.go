package ui

import (
	"fmt"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-shadows/internal/engine/shadow"
	"github.com/Faultbox/midgard-shadows/internal/logger"
)

// ShadowController is what the panel edits.
type ShadowController interface {
	Settings() shadow.Settings
	ApplySettings(s shadow.Settings) (bool, error)
}

// ShadowPanel edits shadow settings and runs shadow map diagnostics.
// Optional hooks left nil hide their buttons.
type ShadowPanel struct {
	ctl ShadowController

	Analyze  func() (shadow.Analysis, error)
	Dump     func() (string, error)
	Preview  func() uint32
	OpenMesh func()

	draft       shadow.Settings
	preset      int32
	status      string
	analysis    *shadow.Analysis
	showPreview bool
	log         *zap.Logger
}

// NewShadowPanel returns a panel editing a copy of ctl's settings.
func NewShadowPanel(ctl ShadowController) *ShadowPanel {
	p := &ShadowPanel{
		ctl: ctl,
		log: logger.Named("ui"),
	}
	p.reset()
	return p
}

// reset discards edits and reloads the applied settings.
func (p *ShadowPanel) reset() {
	p.draft = p.ctl.Settings()
	p.preset = int32(p.draft.Preset)
}

// Status returns the message shown under the buttons.
func (p *ShadowPanel) Status() string {
	return p.status
}

// Draft returns the settings as currently edited.
func (p *ShadowPanel) Draft() shadow.Settings {
	return p.draft
}

// Draw renders the panel as a fixed window at x, y.
func (p *ShadowPanel) Draw(x, y, width float32) {
	flags := imgui.WindowFlagsNoMove | imgui.WindowFlagsNoCollapse | imgui.WindowFlagsAlwaysAutoResize
	imgui.SetNextWindowPos(imgui.NewVec2(x, y))
	imgui.SetNextWindowSize(imgui.NewVec2(width, 0))
	if imgui.BeginV("Shadows", nil, flags) {
		p.drawSettings()
		imgui.Separator()
		p.drawActions()
		if p.status != "" {
			imgui.Spacing()
			imgui.TextWrapped(p.status)
		}
		p.drawAnalysis()
		p.drawPreview(width)
	}
	imgui.End()
}

func (p *ShadowPanel) drawSettings() {
	imgui.Checkbox("Enabled", &p.draft.Enabled)

	if n := len(p.draft.Presets); n > 0 {
		imgui.Text("Quality:")
		imgui.SetNextItemWidth(-1)
		imgui.SliderIntV("##Preset", &p.preset, 0, int32(n-1), presetLabel(p.draft.Presets, int(p.preset)), imgui.SliderFlagsNone)
		p.draft.Preset = int(p.preset)
	}

	imgui.Checkbox("Debug shadow map", &p.draft.DebugShadowMap)
	imgui.Checkbox("Force shadow test", &p.draft.ForceShadowTest)

	imgui.Text("Fixed distance:")
	imgui.SetNextItemWidth(-1)
	imgui.SliderFloatV("##FixedDistance", &p.draft.FixedDistance, 10, 500, "%.0f", imgui.SliderFlagsNone)
}

func (p *ShadowPanel) drawActions() {
	if imgui.Button("Apply") {
		p.apply()
	}
	imgui.SameLine()
	if imgui.Button("Revert") {
		p.reset()
		p.status = ""
	}

	if p.Analyze != nil {
		imgui.SameLine()
		if imgui.Button("Analyze") {
			p.analyze()
		}
	}
	if p.Dump != nil {
		imgui.SameLine()
		if imgui.Button("Dump") {
			p.dump()
		}
	}
	if p.OpenMesh != nil {
		if imgui.Button("Open mesh...") {
			p.OpenMesh()
		}
	}
	if p.Preview != nil {
		imgui.Checkbox("Show shadow map", &p.showPreview)
	}
}

func (p *ShadowPanel) drawAnalysis() {
	a := p.analysis
	if a == nil {
		return
	}
	imgui.Separator()
	imgui.Text(fmt.Sprintf("Depth min %.4f  max %.4f", a.Min, a.Max))
	if a.Varying {
		imgui.TextColored(imgui.NewVec4(0.4, 0.8, 0.4, 1), "Shadow map has depth variation")
	} else {
		imgui.TextColored(imgui.NewVec4(1, 0.8, 0, 1), "Shadow map is flat")
	}
}

func (p *ShadowPanel) drawPreview(width float32) {
	if p.Preview == nil || !p.showPreview {
		return
	}
	tex := p.Preview()
	if tex == 0 {
		imgui.TextDisabled("No shadow map")
		return
	}
	size := width - 16
	texRef := imgui.NewTextureRefTextureID(imgui.TextureID(tex))
	imgui.ImageWithBgV(
		*texRef,
		imgui.NewVec2(size, size),
		imgui.NewVec2(0, 1), // UV flipped
		imgui.NewVec2(1, 0),
		imgui.NewVec4(0, 0, 0, 1),
		imgui.NewVec4(1, 1, 1, 1),
	)
}

// apply pushes the draft to the controller.
func (p *ShadowPanel) apply() {
	changed, err := p.ctl.ApplySettings(p.draft)
	switch {
	case err != nil:
		p.status = "Apply failed: " + err.Error()
		p.log.Error("apply shadow settings", zap.Error(err))
	case changed:
		p.status = "Applied " + presetName(p.draft.Presets, p.draft.Preset)
	default:
		p.status = "No changes"
	}
	p.reset()
}

func (p *ShadowPanel) analyze() {
	a, err := p.Analyze()
	if err != nil {
		p.analysis = nil
		p.status = "Analysis unavailable: " + err.Error()
		return
	}
	p.analysis = &a
	p.status = ""
	p.log.Info("shadow map analyzed",
		zap.Float32("min", a.Min),
		zap.Float32("max", a.Max),
		zap.Bool("varying", a.Varying))
}

func (p *ShadowPanel) dump() {
	path, err := p.Dump()
	if err != nil {
		p.status = "Dump failed: " + err.Error()
		return
	}
	p.status = "Saved " + path
}

func presetName(presets []shadow.QualityPreset, i int) string {
	if i < 0 || i >= len(presets) {
		return "?"
	}
	return presets[i].Name
}

// presetLabel is the slider text for preset i. It doubles as a printf
// format, so literal percent signs are escaped.
func presetLabel(presets []shadow.QualityPreset, i int) string {
	if i < 0 || i >= len(presets) {
		return "?"
	}
	label := fmt.Sprintf("%s (%dpx)", presets[i].Name, presets[i].MapSize)
	return strings.ReplaceAll(label, "%", "%%")
}
