package jobs

import (
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartScheduler runs the reminder job every minute and the no-show
// sweep every five. A nil reminders job (SMS disabled) schedules only
// the sweep. The returned cron can be stopped at shutdown.
func StartScheduler(reminders *ReminderJob, sweep *NoShowJob, logger *logrus.Logger) (*cron.Cron, error) {
	scheduler := cron.New()

	if reminders != nil {
		if _, err := scheduler.AddFunc("* * * * *", reminders.Run); err != nil {
			return nil, err
		}
	}
	if _, err := scheduler.AddFunc("*/5 * * * *", sweep.Run); err != nil {
		return nil, err
	}

	scheduler.Start()
	logger.Info("job scheduler started")
	return scheduler, nil
}
