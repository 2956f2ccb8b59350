package clausewitz

import (
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

// withoutPositions zeroes assignment positions so re-parsed output can be
// compared with the original.
func withoutPositions(items []Assignment) []Assignment {
	out := make([]Assignment, len(items))
	for i, a := range items {
		a.Pos = Position{}
		a.Value = valueWithoutPositions(a.Value)
		out[i] = a
	}
	return out
}

func valueWithoutPositions(v Value) Value {
	switch v := v.(type) {
	case *Map:
		return &Map{Items: withoutPositions(v.Items)}
	case *Array:
		elems := make([]Value, len(v.Elems))
		for i, e := range v.Elems {
			elems[i] = valueWithoutPositions(e)
		}
		return &Array{Elems: elems}
	}
	return v
}

func TestFormatRoundTrip(t *testing.T) {
	convey.Convey("format then parse recovers an equivalent config", t, func() {
		src := `
# country history
tag = FRA
capital = 183
start = 1444.11.11
tax = 50%
ratio = 0.25
name = "Kingdom of France"
@cost = 100
provinces = { 1 2 3 }
empty = { }
1444.11.11 = {
	monarch = { name = "Louis" adm = 3 }
	add_core = 183
	add_core = 184
}
trigger = {
	OR = { tag = FRA tag = ENG }
	NOT = { prestige < -10 }
	has_flag
}
`
		cfg := mustParse(src)
		out := Format(cfg)
		again, err := ParseString(out)
		convey.So(err, convey.ShouldBeNil)
		convey.So(withoutPositions(again.Assignments), convey.ShouldResemble, withoutPositions(cfg.Assignments))
	})

	convey.Convey("scalar spellings", t, func() {
		convey.So(FormatValue(Date{Year: 1444, Month: 11, Day: 11}), convey.ShouldEqual, "1444.11.11")
		convey.So(FormatValue(String{V: "hello", Quoted: true}), convey.ShouldEqual, `"hello"`)
		convey.So(FormatValue(String{V: "two words"}), convey.ShouldEqual, `"two words"`)
		convey.So(FormatValue(Percent{V: 50}), convey.ShouldEqual, "50%")
		convey.So(FormatValue(Integer{V: 0}), convey.ShouldEqual, "0")
		convey.So(FormatValue(Real{V: 2}), convey.ShouldEqual, "2.0")
		convey.So(FormatValue(&Array{}), convey.ShouldEqual, "{ }")
	})
}

func TestUntyped(t *testing.T) {
	convey.Convey("untyped export keeps order and duplicates", t, func() {
		cfg := mustParse("a = { x = 1 x = 2 flag } b = { 1.5 yes }")
		v, _ := Get(cfg, "a")
		convey.So(ToUntyped(v), convey.ShouldResemble, []any{
			map[string]any{"x": int64(1)},
			map[string]any{"x": int64(2)},
			"flag",
		})
		b, _ := Get(cfg, "b")
		convey.So(ToUntyped(b), convey.ShouldResemble, []any{1.5, "yes"})
	})

	convey.Convey("missing paths", t, func() {
		cfg := mustParse("a = { x = 1 }")
		_, ok := Get(cfg, "a", "y")
		convey.So(ok, convey.ShouldBeFalse)
		_, ok = Get(cfg, "a", "x", "z")
		convey.So(ok, convey.ShouldBeFalse)
	})
}
