// Package history stores the results of exploration passes in SQLite so runs can
// be compared across sessions and restarts.
//
// Usage:
//
//	store, err := history.Open("history.db")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
//
//	err = store.RecordReport(ctx, sess.ID, "classic", sess.Settings, report)
//	best, err := store.Best(ctx, "classic")
package history
