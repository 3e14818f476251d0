// Package store keeps many compact values behind integer handles.
//
// A Table[T] holds one enumptr.Compact[T] per slot, so each stored value
// costs a single word plus bookkeeping instead of a two-word interface.
//
//	tbl := store.NewTable[Expr]()
//	defer tbl.Close()
//
//	h, err := tbl.Insert(&Lit{V: 1})
//	if err != nil {
//	    return err
//	}
//
//	tbl.Project(h, func(v enumptr.View[Expr]) {
//	    if lit, ok := litCase.In(v); ok {
//	        lit.V++
//	    }
//	})
//
// # Ownership
//
// Remove hands the value back to the caller, who becomes responsible for its
// teardown. Drop, Clear and Close tear values down, calling Drop on owning
// payloads exactly once. A handle with outstanding borrows cannot be removed
// or dropped.
//
// # Observers
//
//	tbl.Subscribe(store.ObserverFunc(func(e store.Event) {
//	    log.Printf("%s %d (%s)", e.Type, e.Handle, e.Variant)
//	}))
package store
