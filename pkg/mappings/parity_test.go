package mappings

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const parityKeyPool = 8

var paritySpaces = []string{"", " ", "  ", "\n", "\t", "\r\n  ", " \n\t"}

type structMember struct {
	name  string
	value string
}

// snapshotRenderer writes the same mapping entries in the different shapes a node
// or a previous run may produce them in.
type snapshotRenderer struct {
	c fuzz.Continue
}

func (r snapshotRenderer) space() string {
	return paritySpaces[r.c.Intn(len(paritySpaces))]
}

func (r snapshotRenderer) quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func (r snapshotRenderer) shuffle(members []structMember) []structMember {
	out := make([]structMember, 0, len(members))
	for _, i := range r.c.Perm(len(members)) {
		out = append(out, members[i])
	}
	return out
}

// structValue renders members either as struct text inside a JSON string or as a
// JSON object of member strings, in random order with random whitespace.
func (r snapshotRenderer) structValue(members []structMember) string {
	members = r.shuffle(members)
	if r.c.RandBool() {
		parts := make([]string, 0, len(members))
		for _, m := range members {
			parts = append(parts, fmt.Sprintf("%q: %s", m.name, r.quote(r.space()+m.value+r.space())))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	var sb strings.Builder
	sb.WriteString(r.space() + "{")
	for i, m := range members {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(r.space() + m.name + r.space() + ":" + r.space() + m.value + r.space())
	}
	sb.WriteString("}" + r.space())
	return r.quote(sb.String())
}

func (r snapshotRenderer) pairs(entries [][2]string) []byte {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, "["+e[0]+", "+e[1]+"]")
	}
	return []byte("[" + strings.Join(parts, ",\n") + "]")
}

func (r snapshotRenderer) keys() []byte {
	perm := r.c.Perm(parityKeyPool)
	keys := make([]byte, 0, parityKeyPool)
	for _, i := range perm[:r.c.Intn(parityKeyPool+1)] {
		keys = append(keys, byte(i+1))
	}
	return keys
}

func (r snapshotRenderer) amount() uint64 {
	if r.c.RandBool() {
		return r.c.Uint64()
	}
	return uint64(r.c.Int63n(100_000_000_000_000))
}

func randomSnapshotDocument(seed int64) (*Snapshot, SnapshotJSON) {
	expected := NewSnapshot()
	var doc SnapshotJSON
	f := fuzz.NewWithSeed(seed).NilChance(0).Funcs(func(d *SnapshotJSON, c fuzz.Continue) {
		r := snapshotRenderer{c: c}

		var bonded [][2]string
		for _, k := range r.keys() {
			v := BondState{Validator: testAddress(byte(1 + c.Intn(parityKeyPool))), Microcredits: r.amount()}
			expected.Bonded.Set(testAddress(k), v)
			bonded = append(bonded, [2]string{r.quote(testAddress(k).String()), r.structValue([]structMember{
				{memberValidator, v.Validator.String()},
				{memberMicrocredits, fmt.Sprintf("%du64", v.Microcredits)},
			})})
		}
		var unbonding [][2]string
		for _, k := range r.keys() {
			v := UnbondState{Microcredits: r.amount(), Height: c.Uint32()}
			expected.Unbonding.Set(testAddress(k), v)
			unbonding = append(unbonding, [2]string{r.quote(testAddress(k).String()), r.structValue([]structMember{
				{memberMicrocredits, fmt.Sprintf("%du64", v.Microcredits)},
				{memberHeight, fmt.Sprintf("%du32", v.Height)},
			})})
		}
		var withdraw [][2]string
		for _, k := range r.keys() {
			v := testAddress(byte(1 + c.Intn(parityKeyPool)))
			expected.Withdraw.Set(testAddress(k), v)
			withdraw = append(withdraw, [2]string{r.quote(testAddress(k).String()), r.quote(r.space() + v.String() + r.space())})
		}

		d.Bonded = r.pairs(bonded)
		d.Unbonding = r.pairs(unbonding)
		d.Withdraw = r.pairs(withdraw)
	})
	f.Fuzz(&doc)
	return expected, doc
}

func Test_DecoderParity(t *testing.T) {
	t.Run("Should decode generated snapshots identically in both modes", func(t *testing.T) {
		for seed := int64(0); seed < 300; seed++ {
			expected, doc := randomSnapshotDocument(seed)

			checked, err := DecodeSnapshotJSON(doc, true)
			require.Nil(t, err, "seed %d: %s", seed, doc.Bonded)
			unchecked, err := DecodeSnapshotJSON(doc, false)
			require.Nil(t, err, "seed %d: %s", seed, doc.Bonded)

			assert.True(t, expected.Equal(checked), "seed %d", seed)
			assert.True(t, checked.Equal(unchecked), "seed %d", seed)
		}
	})
	t.Run("Should trim whitespace around object members", func(t *testing.T) {
		doc := []byte(`[["` + testAddress(2).String() + `", {"validator": " ` + testAddress(1).String() + `\n", "microcredits": " 42u64"}]]`)

		checked, err := DecodeBondedJSON(doc)
		require.Nil(t, err)
		unchecked, err := DecodeBondedJSONUnchecked(doc)
		require.Nil(t, err)
		assert.True(t, Equal(checked, unchecked))

		v, _ := unchecked.Get(testAddress(2))
		assert.Equal(t, BondState{Validator: testAddress(1), Microcredits: 42}, v)
	})
}
