package tree

import (
	"testing"

	"github.com/dzjyyds666/cwq/variables"
	"github.com/smartystreets/goconvey/convey"
)

func TestSearchOrdering(t *testing.T) {
	convey.Convey("the first pre-order match wins over a shallower later one", t, func() {
		root := build(`
			a = { b = { x = { id = deep } } }
			c = { x = { id = shallow } }
		`, nil)
		found := Search([]*Node{root}, Criteria{NodeKey: "X"})
		convey.So(found, convey.ShouldNotBeNil)
		kv, _ := found.GetKeyValue("id")
		convey.So(kv.Value, convey.ShouldEqual, "deep")
		convey.So(found.Path(), convey.ShouldResemble, []string{"root", "a", "b", "x"})
	})

	convey.Convey("roots are searched in order", t, func() {
		first := build("x = { id = 1 }", nil)
		second := build("x = { id = 2 }", nil)
		found := Search([]*Node{second, first}, Criteria{NodeKey: "x"})
		kv, _ := found.GetKeyValue("id")
		convey.So(kv.Value, convey.ShouldEqual, "2")
	})

	convey.Convey("a node matches before its descendants", t, func() {
		root := build("x = { x = { } }", nil)
		convey.So(root.Search(Criteria{NodeKey: "x"}), convey.ShouldEqual, root.GetNode("x"))
	})

	convey.Convey("SearchAll lists every match in visiting order", t, func() {
		root := build("a = { x = { } } x = { }", nil)
		all := SearchAll([]*Node{root}, Criteria{NodeKey: "x"})
		convey.So(all, convey.ShouldHaveLength, 2)
		convey.So(all[0].Parent().Key(), convey.ShouldEqual, "a")
	})
}

func TestSearchCriteria(t *testing.T) {
	convey.Convey("given a building definition", t, func() {
		root := build(`
			@cost = 50
			building = {
				tags = { Military coastal }
				price = @cost
				category = economy
			}
		`, nil)

		convey.Convey("bare values match case-insensitively", func() {
			found := root.Search(Criteria{BareValue: "MILITARY"})
			convey.So(found, convey.ShouldNotBeNil)
			convey.So(found.Key(), convey.ShouldEqual, "tags")
			convey.So(root.Search(Criteria{BareValue: "naval"}), convey.ShouldBeNil)
		})

		convey.Convey("either side of a key-value may be omitted", func() {
			found := root.Search(Criteria{KeyValue: &KeyValueMatch{Key: "category"}})
			convey.So(found.Key(), convey.ShouldEqual, "building")
			found = root.Search(Criteria{KeyValue: &KeyValueMatch{Value: "Economy"}})
			convey.So(found.Key(), convey.ShouldEqual, "building")
		})

		convey.Convey("resolved values match only when enabled", func() {
			byResolved := Criteria{KeyValue: &KeyValueMatch{Key: "price", Value: "50"}}
			convey.So(root.Search(byResolved), convey.ShouldBeNil)

			byResolved.MatchResolved = true
			convey.So(root.Search(byResolved), convey.ShouldEqual, root.GetNode("building"))

			byRaw := Criteria{KeyValue: &KeyValueMatch{Key: "price", Value: "@cost"}}
			convey.So(root.Search(byRaw), convey.ShouldEqual, root.GetNode("building"))
			byRaw.SkipRaw = true
			convey.So(root.Search(byRaw), convey.ShouldBeNil)
		})

		convey.Convey("any configured criterion is enough", func() {
			found := root.Search(Criteria{NodeKey: "nothing", BareValue: "coastal"})
			convey.So(found.Key(), convey.ShouldEqual, "tags")
		})

		convey.Convey("empty criteria match nothing", func() {
			convey.So(root.Search(Criteria{}), convey.ShouldBeNil)
			convey.So(Search(nil, Criteria{NodeKey: "x"}), convey.ShouldBeNil)
		})

		convey.Convey("resolved search sees a swapped scope", func() {
			Rescope(root, variables.TableFromPairs("@unused", "0"))
			c := Criteria{KeyValue: &KeyValueMatch{Key: "price", Value: "50"}, MatchResolved: true}
			convey.So(root.Search(c), convey.ShouldNotBeNil)
		})
	})
}
