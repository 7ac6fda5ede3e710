// Package jobs holds the background work run by `workboard serve` on a cron
// schedule.
//
//	c := cron.New()
//	refresher := jobs.NewGaugeRefresher(db, metrics, logger)
//	err := refresher.Schedule(c, "@every 1m", 30*time.Second)
//	c.Start()
//	defer c.Stop()
package jobs
