// Package pipeline builds a named graph of live collections from a
// configuration and drives it with operations.
//
// Every collection holds dynamic values (any). Lists are observable.List[any]
// and maps are observable.Map[string, any]. Leaf collections (list, map)
// accept mutating operations; derived collections are built from the
// operators of pkg/observable:
//
//	list     observable.Array
//	map      observable.Dict
//	mapList  observable.MapItems    over a list
//	filter   observable.Filter      over a list
//	mapMap   observable.MapValues   over a map
//	join     observable.Join        over maps
//	apply    observable.ApplyMap    over a map
//	sorted   observable.Sort        over a map
//
// Transforms, predicates, comparators and appliers are referenced by name,
// optionally with an argument after a colon ("scale:10", "gt:3").
//
// # Usage
//
//	p, err := pipeline.Build(cfg, pipeline.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	stop, err := p.Watch("evens", func(ev protocol.Event) {
//	    fmt.Println(ev.String())
//	})
//	defer stop()
//	err = p.Apply(pipeline.Op{Target: "items", Op: pipeline.OpAppend, Value: 4.0})
//
// A Pipeline is not safe for concurrent use.
package pipeline
