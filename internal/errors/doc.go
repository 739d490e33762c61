// Package errors provides structured, actionable error messages for livecoll.
//
// Every error has a code (e.g. "E104") registered with a category, a short
// message and a longer explanation. Callers add what they know: the config
// file location, a suggestion, the underlying error.
//
// # Error Codes
//
//   - E100-E119: configuration
//   - E120-E139: pipeline operations
//   - E140-E159: command line
//   - E160-E179: stream protocol
//
// # Usage
//
//	err := errors.New("E104").
//	    WithDetail(`collection "evens" reads from "nums", which is not declared before it`).
//	    WithLocation("livecoll.json", 12, 17).
//	    WithSuggestion("Declare source collections before the collections that use them")
//
//	fmt.Fprint(os.Stderr, err.Format())
//	// Output:
//	// ERROR E104: Unknown source collection
//	//
//	//   livecoll.json:12:17
//	//
//	//     10 │     {
//	//     11 │       "name": "evens",
//	//   → 12 │       "source": "nums",
//	//        │                 ^
//	//     13 │       "predicate": "even"
//	//     14 │     }
//	// ...
package errors
