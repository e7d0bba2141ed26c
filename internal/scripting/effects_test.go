package scripting_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sundered/mud/internal/config"
	"github.com/sundered/mud/internal/game/dice"
	"github.com/sundered/mud/internal/scripting"
)

type fakeTarget struct {
	name    string
	healed  int
	damaged int
	msgs    []string
}

func (f *fakeTarget) Name() string      { return f.name }
func (f *fakeTarget) Heal(amount int)   { f.healed += amount }
func (f *fakeTarget) Damage(amount int) { f.damaged += amount }
func (f *fakeTarget) Notify(msg string) { f.msgs = append(f.msgs, msg) }

func newTestEngine(t *testing.T, scripts map[string]string) *scripting.Engine {
	t.Helper()
	dir := t.TempDir()
	for name, src := range scripts {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
	}
	cfg := config.ScriptingConfig{ScriptDir: dir, InstructionLimit: 10_000}
	return scripting.NewEngine(cfg, dice.NewSeededSource(1), zap.NewNop())
}

func TestRunEffect_HealsUser(t *testing.T) {
	eng := newTestEngine(t, map[string]string{
		"potion.lua": `
			effect.heal("user", 6)
			effect.notify("user", "Warmth spreads through your veins.")
		`,
	})

	user := &fakeTarget{name: "Alice"}
	target := &fakeTarget{name: "Alice"}
	require.NoError(t, eng.RunEffect("potion.lua", user, target))

	assert.Equal(t, 6, user.healed)
	assert.Equal(t, []string{"Warmth spreads through your veins."}, user.msgs)
}

func TestRunEffect_DamagesTarget(t *testing.T) {
	eng := newTestEngine(t, map[string]string{
		"bomb.lua": `
			effect.damage("target", effect.roll("2d6"))
			effect.notify("target", effect.user_name .. " hurls a bomb at you!")
		`,
	})

	user := &fakeTarget{name: "Alice"}
	target := &fakeTarget{name: "Bob"}
	require.NoError(t, eng.RunEffect("bomb.lua", user, target))

	assert.GreaterOrEqual(t, target.damaged, 2)
	assert.LessOrEqual(t, target.damaged, 12)
	assert.Equal(t, []string{"Alice hurls a bomb at you!"}, target.msgs)
}

func TestRunEffect_UnknownSubjectFails(t *testing.T) {
	eng := newTestEngine(t, map[string]string{
		"bad.lua": `effect.heal("bystander", 5)`,
	})
	err := eng.RunEffect("bad.lua", &fakeTarget{name: "a"}, &fakeTarget{name: "b"})
	assert.Error(t, err)
}

func TestRunEffect_MissingScript(t *testing.T) {
	eng := newTestEngine(t, nil)
	err := eng.RunEffect("absent.lua", &fakeTarget{name: "a"}, &fakeTarget{name: "b"})
	assert.Error(t, err)
}

func TestRunEffect_DoesNotEscapeScriptDir(t *testing.T) {
	eng := newTestEngine(t, nil)
	err := eng.RunEffect("../../etc/passwd", &fakeTarget{name: "a"}, &fakeTarget{name: "b"})
	assert.Error(t, err)
}

func TestRunEffect_RunawayScriptIsStopped(t *testing.T) {
	eng := newTestEngine(t, map[string]string{
		"loop.lua": `while true do end`,
	})
	err := eng.RunEffect("loop.lua", &fakeTarget{name: "a"}, &fakeTarget{name: "b"})
	assert.Error(t, err)
}
