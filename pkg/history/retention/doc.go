// Package retention prunes old runs from a history store.
//
// Two limits are applied, in order:
//
//   - Days: runs that started more than Days ago are deleted
//   - MaxRecords: only the newest MaxRecords runs are kept
//
// A zero value disables the corresponding limit. Prune can be called
// directly (mapcheck history prune) or on a cron schedule through Start:
//
//	pruner := retention.NewPruner(store, &retention.Config{
//		RetentionDays: 90,
//		PruneSchedule: "0 3 * * *",
//	})
//	if err := pruner.Start(ctx); err != nil {
//		return err
//	}
//	defer pruner.Stop()
package retention
