package combat_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sundered/mud/internal/game/combat"
	"github.com/sundered/mud/internal/game/dice"
)

func tickNow(a *combat.Arena) {
	a.Tick(time.Now().Add(time.Second))
}

func TestRegistry_GetOrCreateIsIdempotent(t *testing.T) {
	reg := newTestRegistry(&fixedSource{val: 9}, nil)
	loc := newTestLocation("pit")

	a1, err := reg.GetOrCreate("pit", loc)
	require.NoError(t, err)
	a2, err := reg.GetOrCreate("pit", nil)
	require.NoError(t, err)
	assert.Same(t, a1, a2)

	a1.Stop()
	_, found := reg.Lookup("pit")
	assert.False(t, found, "stopped arena must leave the registry")

	a3, err := reg.GetOrCreate("pit", loc)
	require.NoError(t, err)
	assert.NotSame(t, a1, a3, "a new fight allocates a new arena")
}

func TestRegistry_RequiresLocationForCreation(t *testing.T) {
	reg := newTestRegistry(&fixedSource{val: 9}, nil)
	_, err := reg.GetOrCreate("pit", nil)
	assert.ErrorIs(t, err, combat.ErrNoLocation)
}

func TestArena_RosterExclusivity(t *testing.T) {
	reg := newTestRegistry(&fixedSource{val: 9}, nil)
	pitArena, err := reg.GetOrCreate("pit", newTestLocation("pit"))
	require.NoError(t, err)
	gateArena, err := reg.GetOrCreate("gate", newTestLocation("gate"))
	require.NoError(t, err)

	alice := newTestCombatant("alice", 10, "pit", true)
	require.NoError(t, pitArena.AddCombatant(alice))
	assert.ErrorIs(t, gateArena.AddCombatant(alice), combat.ErrAlreadyInCombat)

	// Re-adding to the same arena is a quiet no-op.
	require.NoError(t, pitArena.AddCombatant(alice))
	assert.Equal(t, 1, pitArena.RosterSize())

	got, ok := reg.ArenaFor("alice")
	require.True(t, ok)
	assert.Same(t, pitArena, got)
}

func TestArena_QueueActionValidation(t *testing.T) {
	reg := newTestRegistry(&fixedSource{val: 9}, nil)
	arena, err := reg.GetOrCreate("pit", newTestLocation("pit"))
	require.NoError(t, err)

	alice := newTestCombatant("alice", 10, "pit", true)
	stranger := newTestCombatant("stranger", 10, "pit", true)
	require.NoError(t, arena.AddCombatant(alice))

	assert.ErrorIs(t, arena.QueueAction(stranger, combat.Hold()), combat.ErrNotInCombat)
	assert.Error(t, arena.QueueAction(alice, combat.AttackAction(nil, false)))
	assert.Error(t, arena.QueueAction(alice, &combat.Action{Kind: combat.ActionKind(99)}))
	assert.Equal(t, 0, arena.QueueLen(), "rejected actions leave the queue unchanged")

	require.NoError(t, arena.QueueAction(alice, combat.Hold()))
	assert.Equal(t, 1, arena.QueueLen())

	arena.Stop()
	assert.ErrorIs(t, arena.QueueAction(alice, combat.Hold()), combat.ErrCombatOver)
	assert.ErrorIs(t, arena.AddCombatant(stranger), combat.ErrCombatOver)
}

func TestParseActionKind(t *testing.T) {
	for label, want := range map[string]combat.ActionKind{
		"hold":   combat.ActionHold,
		"attack": combat.ActionAttack,
		"stunt":  combat.ActionStunt,
		"use":    combat.ActionUseItem,
		"wield":  combat.ActionWield,
	} {
		got, err := combat.ParseActionKind(label)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := combat.ParseActionKind("moonwalk")
	assert.ErrorIs(t, err, combat.ErrUnknownAction)
}

func TestArena_AttackHitAppliesDamage(t *testing.T) {
	// Natural 15 beats the unmodified target of 10.
	reg := newTestRegistry(&fixedSource{val: 14}, nil)
	arena, err := reg.GetOrCreate("pit", newTestLocation("pit"))
	require.NoError(t, err)

	alice := newTestCombatant("alice", 10, "pit", true)
	wolf := newTestCombatant("wolf", 10, "pit", false)
	alice.Wield(&testWeapon{name: "sword", ability: dice.Strength, damage: 4})
	require.NoError(t, arena.AddCombatant(alice))
	require.NoError(t, arena.AddCombatant(wolf))

	require.NoError(t, arena.QueueAction(alice, combat.AttackAction(wolf, false)))
	tickNow(arena)

	hp, _ := wolf.HP()
	assert.Equal(t, 6, hp)
	assert.Contains(t, wolf.sent(), "alice hits you with sword for 4 damage!")
}

func TestArena_AttackMissLeavesTargetUntouched(t *testing.T) {
	// Natural 6 loses to the target of 10.
	reg := newTestRegistry(&fixedSource{val: 5}, nil)
	arena, err := reg.GetOrCreate("pit", newTestLocation("pit"))
	require.NoError(t, err)

	alice := newTestCombatant("alice", 10, "pit", true)
	wolf := newTestCombatant("wolf", 10, "pit", false)
	require.NoError(t, arena.AddCombatant(alice))
	require.NoError(t, arena.AddCombatant(wolf))

	require.NoError(t, arena.QueueAction(alice, combat.AttackAction(wolf, false)))
	tickNow(arena)

	hp, _ := wolf.HP()
	assert.Equal(t, 10, hp)
	assert.Contains(t, alice.sent(), "You miss wolf.")
}

func TestArena_UnarmedAttackFallsBackToBareHands(t *testing.T) {
	reg := newTestRegistry(&fixedSource{val: 14}, nil)
	arena, err := reg.GetOrCreate("pit", newTestLocation("pit"))
	require.NoError(t, err)

	alice := newTestCombatant("alice", 10, "pit", true)
	wolf := newTestCombatant("wolf", 10, "pit", false)
	require.NoError(t, arena.AddCombatant(alice))
	require.NoError(t, arena.AddCombatant(wolf))

	require.NoError(t, arena.QueueAction(alice, combat.AttackAction(wolf, false)))
	tickNow(arena)

	hp, _ := wolf.HP()
	assert.Equal(t, 9, hp, "bare hands deal their 1 damage")
	assert.Contains(t, wolf.sent(), "alice hits you with bare hands for 1 damage!")
}

func TestArena_CriticalHitDoublesWeaponDice(t *testing.T) {
	// Natural 20: critical success.
	reg := newTestRegistry(&fixedSource{val: 19}, nil)
	arena, err := reg.GetOrCreate("pit", newTestLocation("pit"))
	require.NoError(t, err)

	alice := newTestCombatant("alice", 20, "pit", true)
	wolf := newTestCombatant("wolf", 20, "pit", false)
	alice.Wield(&testWeapon{name: "sword", ability: dice.Strength, damage: 4})
	require.NoError(t, arena.AddCombatant(alice))
	require.NoError(t, arena.AddCombatant(wolf))

	require.NoError(t, arena.QueueAction(alice, combat.AttackAction(wolf, false)))
	tickNow(arena)

	hp, _ := wolf.HP()
	assert.Equal(t, 12, hp)
	assert.Contains(t, alice.sent(), "You critically hit wolf for 8 damage (hurt).")
}

func TestArena_AdvantageDirectionality(t *testing.T) {
	reg := newTestRegistry(&fixedSource{val: 9}, nil)
	arena, err := reg.GetOrCreate("pit", newTestLocation("pit"))
	require.NoError(t, err)

	recipient := newTestCombatant("recipient", 10, "pit", true)
	target := newTestCombatant("target", 10, "pit", false)
	require.NoError(t, arena.AddCombatant(recipient))
	require.NoError(t, arena.AddCombatant(target))

	arena.GiveAdvantage(recipient, target)
	assert.True(t, arena.HasAdvantage(recipient, target))
	assert.False(t, arena.HasAdvantage(target, recipient), "advantage is keyed by target, not recipient")

	arena.GiveDisadvantage(recipient, target)
	assert.True(t, arena.HasDisadvantage(recipient, target))
	assert.False(t, arena.HasDisadvantage(target, recipient))
}

func TestArena_StuntGrantsAdvantageOnSuccess(t *testing.T) {
	// Natural 15 beats the unmodified opposed target of 10.
	reg := newTestRegistry(&fixedSource{val: 14}, nil)
	arena, err := reg.GetOrCreate("pit", newTestLocation("pit"))
	require.NoError(t, err)

	alice := newTestCombatant("alice", 10, "pit", true)
	wolf := newTestCombatant("wolf", 10, "pit", false)
	require.NoError(t, arena.AddCombatant(alice))
	require.NoError(t, arena.AddCombatant(wolf))

	stunt := combat.StuntAction(alice, wolf, true, dice.Dexterity, dice.Dexterity)
	require.NoError(t, arena.QueueAction(alice, stunt))
	tickNow(arena)

	assert.True(t, arena.HasAdvantage(alice, wolf))
	assert.False(t, arena.HasDisadvantage(alice, wolf))
}

func TestArena_StuntResistedChangesNothing(t *testing.T) {
	// Natural 6 loses to the unmodified opposed target of 10, so every stunt
	// here is resisted, by the defender each variant selects.
	reg := newTestRegistry(&fixedSource{val: 5}, nil)
	arena, err := reg.GetOrCreate("pit", newTestLocation("pit"))
	require.NoError(t, err)

	alice := newTestCombatant("alice", 10, "pit", true)
	bob := newTestCombatant("bob", 10, "pit", true)
	wolf := newTestCombatant("wolf", 10, "pit", false)
	require.NoError(t, arena.AddCombatant(alice))
	require.NoError(t, arena.AddCombatant(bob))
	require.NoError(t, arena.AddCombatant(wolf))

	// Boosting yourself against the wolf: the wolf defends.
	boost := combat.StuntAction(alice, wolf, true, dice.Dexterity, dice.Dexterity)
	require.NoError(t, arena.QueueAction(alice, boost))
	tickNow(arena)
	assert.Contains(t, alice.sent(), "wolf resists your maneuver.")

	// Boosting bob against the wolf: still the wolf defends.
	assist := combat.StuntAction(bob, wolf, true, dice.Dexterity, dice.Dexterity)
	require.NoError(t, arena.QueueAction(alice, assist))
	tickNow(arena)
	assert.Len(t, sentMatching(alice, "wolf resists your maneuver."), 2)

	// Hampering the wolf to shield bob: bob is the one being covered, so
	// bob defends.
	foil := combat.StuntAction(bob, wolf, false, dice.Dexterity, dice.Dexterity)
	require.NoError(t, arena.QueueAction(alice, foil))
	tickNow(arena)
	assert.Contains(t, alice.sent(), "bob resists your maneuver.")

	assert.False(t, arena.HasAdvantage(alice, wolf))
	assert.False(t, arena.HasDisadvantage(alice, wolf))
}

// sentMatching returns the messages c received that equal msg.
func sentMatching(c *testCombatant, msg string) []string {
	var out []string
	for _, got := range c.sent() {
		if got == msg {
			out = append(out, got)
		}
	}
	return out
}

func TestArena_StuntCheckHonorsAdvantageOnDefender(t *testing.T) {
	// With advantage against the wolf the stunt check rolls twice and keeps
	// the natural 15, which beats the opposed target of 10; the first roll
	// alone would have lost.
	src := &seqSource{vals: []int{5, 14}}
	reg := newTestRegistry(src, nil)
	arena, err := reg.GetOrCreate("pit", newTestLocation("pit"))
	require.NoError(t, err)

	alice := newTestCombatant("alice", 10, "pit", true)
	wolf := newTestCombatant("wolf", 10, "pit", false)
	require.NoError(t, arena.AddCombatant(alice))
	require.NoError(t, arena.AddCombatant(wolf))

	arena.GiveAdvantage(alice, wolf)
	stunt := combat.StuntAction(wolf, wolf, true, dice.Dexterity, dice.Dexterity)
	require.NoError(t, arena.QueueAction(alice, stunt))
	tickNow(arena)

	assert.Contains(t, alice.sent(), "You open wolf up to attack!")
}

func TestArena_UseItemPhases(t *testing.T) {
	reg := newTestRegistry(&fixedSource{val: 9}, nil)
	arena, err := reg.GetOrCreate("pit", newTestLocation("pit"))
	require.NoError(t, err)

	alice := newTestCombatant("alice", 10, "pit", true)
	wolf := newTestCombatant("wolf", 10, "pit", false)
	require.NoError(t, arena.AddCombatant(alice))
	require.NoError(t, arena.AddCombatant(wolf))

	potion := &testUsable{name: "potion"}
	require.NoError(t, arena.QueueAction(alice, combat.UseItemAction(potion, alice)))
	tickNow(arena)
	assert.Equal(t, 1, potion.used)
	assert.Equal(t, 1, potion.postRan)

	// A failed pre-use gate skips the effect and the post hook.
	spent := &testUsable{name: "spent potion", preErr: errExhausted}
	require.NoError(t, arena.QueueAction(alice, combat.UseItemAction(spent, alice)))
	tickNow(arena)
	assert.Equal(t, 0, spent.used)
	assert.Equal(t, 0, spent.postRan)
	assert.Contains(t, alice.sent(), "You cannot use spent potion: no charges left")
}

func TestArena_WieldSwapsWeapon(t *testing.T) {
	reg := newTestRegistry(&fixedSource{val: 9}, nil)
	arena, err := reg.GetOrCreate("pit", newTestLocation("pit"))
	require.NoError(t, err)

	alice := newTestCombatant("alice", 10, "pit", true)
	wolf := newTestCombatant("wolf", 10, "pit", false)
	require.NoError(t, arena.AddCombatant(alice))
	require.NoError(t, arena.AddCombatant(wolf))

	axe := &testWeapon{name: "axe", ability: dice.Strength, damage: 6}
	require.NoError(t, arena.QueueAction(alice, combat.WieldAction(axe)))
	tickNow(arena)

	assert.Same(t, axe, alice.Wielded())
	assert.Contains(t, alice.sent(), "You ready axe.")
}

func TestArena_RepeatRequeuesSameAttack(t *testing.T) {
	reg := newTestRegistry(&fixedSource{val: 14}, nil)
	arena, err := reg.GetOrCreate("pit", newTestLocation("pit"))
	require.NoError(t, err)

	alice := newTestCombatant("alice", 30, "pit", true)
	wolf := newTestCombatant("wolf", 30, "pit", false)
	alice.Wield(&testWeapon{name: "sword", ability: dice.Strength, damage: 4})
	require.NoError(t, arena.AddCombatant(alice))
	require.NoError(t, arena.AddCombatant(wolf))

	require.NoError(t, arena.QueueAction(alice, combat.AttackAction(wolf, true)))
	tickNow(arena)
	tickNow(arena)
	tickNow(arena)

	hp, _ := wolf.HP()
	assert.Equal(t, 18, hp, "a repeating attack lands every tick")
}

func TestArena_FallbackAttacksLastTarget(t *testing.T) {
	reg := newTestRegistry(&fixedSource{val: 14}, nil)
	arena, err := reg.GetOrCreate("pit", newTestLocation("pit"))
	require.NoError(t, err)

	alice := newTestCombatant("alice", 30, "pit", true)
	wolf := newTestCombatant("wolf", 30, "pit", false)
	alice.Wield(&testWeapon{name: "sword", ability: dice.Strength, damage: 4})
	require.NoError(t, arena.AddCombatant(alice))
	require.NoError(t, arena.AddCombatant(wolf))

	// The one-shot attack fires once, then its fallback keeps swinging at
	// the same target.
	require.NoError(t, arena.QueueAction(alice, combat.AttackAction(wolf, false)))
	tickNow(arena)
	tickNow(arena)

	hp, _ := wolf.HP()
	assert.Equal(t, 22, hp, "original attack plus one fallback attack")
}

func TestArena_FallbackWithoutTargetHolds(t *testing.T) {
	reg := newTestRegistry(&fixedSource{val: 14}, nil)
	arena, err := reg.GetOrCreate("pit", newTestLocation("pit"))
	require.NoError(t, err)

	alice := newTestCombatant("alice", 30, "pit", true)
	wolf := newTestCombatant("wolf", 30, "pit", false)
	require.NoError(t, arena.AddCombatant(alice))
	require.NoError(t, arena.AddCombatant(wolf))

	require.NoError(t, arena.QueueAction(alice, combat.Hold()))
	tickNow(arena)

	hp, _ := wolf.HP()
	assert.Equal(t, 30, hp, "holding never attacks anyone")
	assert.Equal(t, 1, arena.QueueLen(), "a hold fallback is requeued")
}

func TestArena_DepartedCombatantActionDropped(t *testing.T) {
	reg := newTestRegistry(&fixedSource{val: 14}, nil)
	arena, err := reg.GetOrCreate("pit", newTestLocation("pit"))
	require.NoError(t, err)

	alice := newTestCombatant("alice", 30, "pit", true)
	bob := newTestCombatant("bob", 30, "pit", true)
	wolf := newTestCombatant("wolf", 30, "pit", false)
	bob.Wield(&testWeapon{name: "sword", ability: dice.Strength, damage: 4})
	require.NoError(t, arena.AddCombatant(alice))
	require.NoError(t, arena.AddCombatant(bob))
	require.NoError(t, arena.AddCombatant(wolf))

	swing := combat.AttackAction(wolf, false)
	swing.Delay = 2 * time.Second
	require.NoError(t, arena.QueueAction(bob, swing))

	// Bob flees before his swing lands. The first tick silently removes him
	// and the second drops his queued attack instead of executing it.
	bob.moveTo("gate")
	tickNow(arena)
	arena.Tick(time.Now().Add(3 * time.Second))

	hp, _ := wolf.HP()
	assert.Equal(t, 30, hp)
	assert.False(t, arena.InRoster("bob"))
	assert.False(t, arena.Stopped(), "alice and the wolf are still fighting")
}

func TestArena_RejoinAfterFleeIsDefeatedOnce(t *testing.T) {
	rec := &defeatRecorder{}
	reg := newTestRegistry(&fixedSource{val: 9}, rec.hook())
	arena, err := reg.GetOrCreate("pit", newTestLocation("pit"))
	require.NoError(t, err)

	p1 := newTestCombatant("p1", 10, "pit", true)
	n1 := newTestCombatant("n1", 10, "pit", false)
	n2 := newTestCombatant("n2", 10, "pit", false)
	require.NoError(t, arena.AddCombatant(p1))
	require.NoError(t, arena.AddCombatant(n1))
	require.NoError(t, arena.AddCombatant(n2))

	// n1 slips out and returns while the fight is still on.
	n1.moveTo("gate")
	tickNow(arena)
	assert.False(t, arena.InRoster("n1"))
	require.False(t, arena.Stopped())

	n1.moveTo("pit")
	require.NoError(t, arena.AddCombatant(n1))
	assert.Equal(t, 3, arena.RosterSize())

	n1.setHP(0)
	n2.setHP(0)
	tickNow(arena)

	assert.True(t, arena.Stopped())
	assert.ElementsMatch(t, []string{"n1", "n2"}, rec.defeated(),
		"rejoining must not duplicate a combatant's defeat")
}

func TestArena_EmptyArenaIsReaped(t *testing.T) {
	reg := newTestRegistry(&fixedSource{val: 9}, nil)
	arena, err := reg.GetOrCreate("pit", newTestLocation("pit"))
	require.NoError(t, err)

	// The first tick is grace for an enrollment still in flight.
	tickNow(arena)
	assert.False(t, arena.Stopped())

	tickNow(arena)
	assert.True(t, arena.Stopped())
	_, found := reg.Lookup("pit")
	assert.False(t, found, "a fight no one ever joined must not leak")
}

func TestArena_TerminationWithDefeatedEnemy(t *testing.T) {
	rec := &defeatRecorder{}
	reg := newTestRegistry(&fixedSource{val: 9}, rec.hook())
	arena, err := reg.GetOrCreate("pit", newTestLocation("pit"))
	require.NoError(t, err)

	p1 := newTestCombatant("p1", 10, "pit", true)
	p2 := newTestCombatant("p2", 10, "pit", true)
	n1 := newTestCombatant("n1", 5, "pit", false)
	require.NoError(t, arena.AddCombatant(p1))
	require.NoError(t, arena.AddCombatant(p2))
	require.NoError(t, arena.AddCombatant(n1))

	// p2 and n1 go down the same tick; the player side still stands.
	p2.setHP(0)
	n1.setHP(0)
	tickNow(arena)

	assert.True(t, arena.Stopped())
	assert.Equal(t, []string{"n1"}, rec.defeated(), "only the losing side is looted, exactly once")
	assert.Contains(t, p1.sent(), "You are victorious!")
	assert.Contains(t, p2.sent(), "You have fallen!")
	assert.Contains(t, n1.sent(), "You have been defeated!")

	_, found := reg.Lookup("pit")
	assert.False(t, found)
	_, enrolled := reg.ArenaFor("p1")
	assert.False(t, enrolled, "enrollments are released on stop")
}

func TestArena_MutualAnnihilation(t *testing.T) {
	rec := &defeatRecorder{}
	reg := newTestRegistry(&fixedSource{val: 9}, rec.hook())
	loc := newTestLocation("pit")
	arena, err := reg.GetOrCreate("pit", loc)
	require.NoError(t, err)

	p1 := newTestCombatant("p1", 10, "pit", true)
	n1 := newTestCombatant("n1", 10, "pit", false)
	require.NoError(t, arena.AddCombatant(p1))
	require.NoError(t, arena.AddCombatant(n1))

	p1.setHP(0)
	n1.setHP(0)
	tickNow(arena)

	assert.True(t, arena.Stopped())
	assert.Empty(t, rec.defeated(), "no loot when no one stands")
	assert.Contains(t, loc.heard(), "The fight is over. No one is left standing.")
}

func TestArena_AllEnemiesFleeEndsCombat(t *testing.T) {
	rec := &defeatRecorder{}
	reg := newTestRegistry(&fixedSource{val: 9}, rec.hook())
	arena, err := reg.GetOrCreate("pit", newTestLocation("pit"))
	require.NoError(t, err)

	p1 := newTestCombatant("p1", 10, "pit", true)
	n1 := newTestCombatant("n1", 10, "pit", false)
	require.NoError(t, arena.AddCombatant(p1))
	require.NoError(t, arena.AddCombatant(n1))

	n1.moveTo("gate")
	tickNow(arena)

	assert.True(t, arena.Stopped())
	assert.Empty(t, rec.defeated(), "fleeing is a silent removal, not a defeat")
}

func TestArena_SidesPartition(t *testing.T) {
	reg := newTestRegistry(&fixedSource{val: 9}, nil)
	arena, err := reg.GetOrCreate("pit", newTestLocation("pit"))
	require.NoError(t, err)

	p1 := newTestCombatant("p1", 10, "pit", true)
	p2 := newTestCombatant("p2", 10, "pit", true)
	n1 := newTestCombatant("n1", 10, "pit", false)
	require.NoError(t, arena.AddCombatant(p1))
	require.NoError(t, arena.AddCombatant(p2))
	require.NoError(t, arena.AddCombatant(n1))

	allies, enemies := arena.Sides(p1)
	require.Len(t, allies, 1)
	require.Len(t, enemies, 1)
	assert.Equal(t, "p2", allies[0].ID())
	assert.Equal(t, "n1", enemies[0].ID())

	allies, enemies = arena.Sides(n1)
	assert.Empty(t, allies)
	assert.Len(t, enemies, 2)
}

func TestArena_SidesInPvPEveryoneIsHostile(t *testing.T) {
	reg := newTestRegistry(&fixedSource{val: 9}, nil)
	loc := newTestLocation("pit")
	loc.allowPvP = true
	arena, err := reg.GetOrCreate("pit", loc)
	require.NoError(t, err)

	p1 := newTestCombatant("p1", 10, "pit", true)
	p2 := newTestCombatant("p2", 10, "pit", true)
	require.NoError(t, arena.AddCombatant(p1))
	require.NoError(t, arena.AddCombatant(p2))

	allies, enemies := arena.Sides(p1)
	assert.Empty(t, allies)
	require.Len(t, enemies, 1)
	assert.Equal(t, "p2", enemies[0].ID())
}

func TestArena_StopIsIdempotent(t *testing.T) {
	reg := newTestRegistry(&fixedSource{val: 9}, nil)
	arena, err := reg.GetOrCreate("pit", newTestLocation("pit"))
	require.NoError(t, err)

	alice := newTestCombatant("alice", 10, "pit", true)
	require.NoError(t, arena.AddCombatant(alice))

	arena.Stop()
	assert.NotPanics(t, func() { arena.Stop() })

	_, found := reg.Lookup("pit")
	assert.False(t, found)
	_, enrolled := reg.ArenaFor("alice")
	assert.False(t, enrolled)
}

func TestArena_LateTickDrainsBacklogInOrder(t *testing.T) {
	reg := newTestRegistry(&fixedSource{val: 14}, nil)
	arena, err := reg.GetOrCreate("pit", newTestLocation("pit"))
	require.NoError(t, err)

	alice := newTestCombatant("alice", 30, "pit", true)
	wolf := newTestCombatant("wolf", 30, "pit", false)
	alice.Wield(&testWeapon{name: "sword", ability: dice.Strength, damage: 4})
	require.NoError(t, arena.AddCombatant(alice))
	require.NoError(t, arena.AddCombatant(wolf))

	// Three attacks stack up while the driver stalls; one late tick drains
	// them all without losing any.
	for i := 0; i < 3; i++ {
		require.NoError(t, arena.QueueAction(alice, combat.AttackAction(wolf, true)))
	}
	arena.Tick(time.Now().Add(time.Minute))

	hp, _ := wolf.HP()
	assert.Equal(t, 18, hp, "all three backlogged attacks landed")
}

func TestRegistry_StopAll(t *testing.T) {
	reg := newTestRegistry(&fixedSource{val: 9}, nil)
	a1, err := reg.GetOrCreate("pit", newTestLocation("pit"))
	require.NoError(t, err)
	a2, err := reg.GetOrCreate("gate", newTestLocation("gate"))
	require.NoError(t, err)

	reg.StopAll()
	assert.True(t, a1.Stopped())
	assert.True(t, a2.Stopped())
}

func TestArena_Summary(t *testing.T) {
	reg := newTestRegistry(&fixedSource{val: 9}, nil)
	arena, err := reg.GetOrCreate("pit", newTestLocation("pit"))
	require.NoError(t, err)

	alice := newTestCombatant("alice", 10, "pit", true)
	wolf := newTestCombatant("wolf", 10, "pit", false)
	require.NoError(t, arena.AddCombatant(alice))
	require.NoError(t, arena.AddCombatant(wolf))
	wolf.setHP(4)

	summary := arena.Summary(alice)
	assert.Contains(t, summary, "You: alice (unharmed)")
	assert.Contains(t, summary, "Enemies: wolf (badly hurt)")
	assert.Contains(t, summary, "Allies: none")
}
