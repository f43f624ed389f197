package reminder

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/carebridge/carebridge-be/internal/db"
	"github.com/carebridge/carebridge-be/internal/notify"
)

// Reminders overdue by more than this are flagged when sent
const overdueThreshold = 5 * time.Minute

// Store is the persistence surface the dispatcher needs
type Store interface {
	CreateReminder(ctx context.Context, reminder *db.Reminder) error
	DueReminders(ctx context.Context, now time.Time) ([]db.Reminder, error)
	MarkReminderSent(ctx context.Context, id string, sentAt time.Time) error
	CancelRemindersForAppointment(ctx context.Context, appointmentID string) error
}

// Sender delivers a reminder to the patient
type Sender interface {
	Notify(ctx context.Context, msg notify.Message) error
}

// Dispatcher scans for due reminders every minute and delivers them
type Dispatcher struct {
	store  Store
	sender Sender
	cron   *cron.Cron
	nowFn  func() time.Time
}

// NewDispatcher creates a reminder dispatcher
func NewDispatcher(store Store, sender Sender) *Dispatcher {
	return &Dispatcher{
		store:  store,
		sender: sender,
		cron:   cron.New(),
		nowFn:  time.Now,
	}
}

// Start begins the every-minute dispatch loop
func (d *Dispatcher) Start() error {
	if _, err := d.cron.AddFunc("* * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Second)
		defer cancel()
		d.DispatchDue(ctx)
	}); err != nil {
		return err
	}
	d.cron.Start()
	log.Printf("Reminder dispatcher started")
	return nil
}

// Stop halts the dispatch loop, waiting for a running scan to finish
func (d *Dispatcher) Stop() {
	ctx := d.cron.Stop()
	<-ctx.Done()
	log.Printf("Reminder dispatcher stopped")
}

// Schedule persists a reminder for later delivery. Reminders that are
// already past due are kept and will go out on the next scan with an
// overdue warning.
func (d *Dispatcher) Schedule(ctx context.Context, reminder *db.Reminder) error {
	if reminder.RemindAt.Before(d.nowFn()) {
		log.Printf("Warning: reminder for appointment %s is already past due (%s), will send immediately",
			reminder.AppointmentID, reminder.RemindAt.Format(time.RFC3339))
	}
	return d.store.CreateReminder(ctx, reminder)
}

// Cancel drops pending reminders for an appointment
func (d *Dispatcher) Cancel(ctx context.Context, appointmentID string) error {
	return d.store.CancelRemindersForAppointment(ctx, appointmentID)
}

// DispatchDue sends every reminder that has come due. Each reminder is
// marked sent before delivery so a crashing channel cannot cause a
// duplicate send on the next scan.
func (d *Dispatcher) DispatchDue(ctx context.Context) {
	now := d.nowFn()

	due, err := d.store.DueReminders(ctx, now)
	if err != nil {
		log.Printf("Reminder scan failed: %v", err)
		return
	}

	for _, r := range due {
		if now.Sub(r.RemindAt) > overdueThreshold {
			log.Printf("Warning: reminder %s is overdue by %s", r.ID, now.Sub(r.RemindAt).Round(time.Second))
		}

		if err := d.store.MarkReminderSent(ctx, r.ID, now); err != nil {
			log.Printf("Failed to mark reminder %s sent: %v", r.ID, err)
			continue
		}

		msg := notify.Message{
			Recipient: r.Recipient,
			Title:     r.Title,
			Body:      r.Body,
		}
		if err := d.sender.Notify(ctx, msg); err != nil {
			log.Printf("Failed to deliver reminder %s: %v", r.ID, err)
			continue
		}

		log.Printf("Delivered reminder %s for appointment %s", r.ID, r.AppointmentID)
	}
}
