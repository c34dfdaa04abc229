package ui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/midgard-shadows/internal/engine/shadow"
)

type fakeController struct {
	settings shadow.Settings
	applied  int
	err      error
}

func (f *fakeController) Settings() shadow.Settings { return f.settings }

func (f *fakeController) ApplySettings(s shadow.Settings) (bool, error) {
	f.applied++
	if f.err != nil {
		return false, f.err
	}
	changed := s.Preset != f.settings.Preset || s.Enabled != f.settings.Enabled
	f.settings = s
	return changed, nil
}

func TestPanelApply(t *testing.T) {
	ctl := &fakeController{settings: shadow.DefaultSettings()}
	p := NewShadowPanel(ctl)

	p.draft.Preset = 3
	p.apply()
	assert.Equal(t, 3, ctl.settings.Preset)
	assert.Equal(t, "Applied ultra", p.Status())
	assert.Equal(t, int32(3), p.preset)

	p.apply()
	assert.Equal(t, "No changes", p.Status())
	assert.Equal(t, 2, ctl.applied)
}

func TestPanelApplyError(t *testing.T) {
	ctl := &fakeController{settings: shadow.DefaultSettings(), err: errors.New("framebuffer incomplete")}
	p := NewShadowPanel(ctl)

	p.draft.Preset = 0
	p.apply()
	assert.Contains(t, p.Status(), "framebuffer incomplete")
	assert.Equal(t, 1, p.Draft().Preset, "draft reverts to the applied settings")
}

func TestPanelAnalyze(t *testing.T) {
	p := NewShadowPanel(&fakeController{settings: shadow.DefaultSettings()})

	p.Analyze = func() (shadow.Analysis, error) {
		return shadow.Analysis{Min: 0.2, Max: 0.9, Varying: true}, nil
	}
	p.analyze()
	if assert.NotNil(t, p.analysis) {
		assert.True(t, p.analysis.Varying)
	}

	p.Analyze = func() (shadow.Analysis, error) { return shadow.Analysis{}, shadow.ErrReadbackUnsupported }
	p.analyze()
	assert.Nil(t, p.analysis)
	assert.Contains(t, p.Status(), "Analysis unavailable")
}

func TestPanelDump(t *testing.T) {
	p := NewShadowPanel(&fakeController{settings: shadow.DefaultSettings()})
	p.Dump = func() (string, error) { return "dumps/shadow.bmp", nil }
	p.dump()
	assert.Equal(t, "Saved dumps/shadow.bmp", p.Status())
}

func TestPresetLabel(t *testing.T) {
	presets := []shadow.QualityPreset{{Name: "100%", MapSize: 512}}
	assert.Equal(t, "100%% (512px)", presetLabel(presets, 0))
	assert.Equal(t, "?", presetLabel(presets, 4))
	assert.Equal(t, "?", presetName(presets, -1))
}
