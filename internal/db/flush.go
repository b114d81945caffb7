package db

import (
	"database/sql"
	"fmt"

	"github.com/synthline/firmforge/internal/domain"
	"github.com/synthline/firmforge/internal/seed"
	"github.com/synthline/firmforge/internal/store"
)

// Flush writes a finished run to the database in one transaction, in
// referential order: reference tables first, then consultants and their
// history, then projects and everything hanging off them.
func Flush(database *sql.DB, ref *seed.Reference, wf *store.Workforce, pr *store.Projects, payroll []domain.PayrollRecord) (err error) {
	tx, err := database.Begin()
	if err != nil {
		return fmt.Errorf("starting flush transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = flushReference(tx, ref); err != nil {
		return err
	}
	if err = flushWorkforce(tx, wf); err != nil {
		return err
	}
	if err = flushPayroll(tx, payroll); err != nil {
		return err
	}
	if err = flushProjects(tx, pr); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing flush: %w", err)
	}
	return nil
}

func flushReference(tx *sql.Tx, ref *seed.Reference) error {
	for _, t := range ref.Titles {
		if _, err := tx.Exec(`INSERT INTO Title (TitleID, Title) VALUES (?, ?)`, t.ID, t.Name); err != nil {
			return fmt.Errorf("inserting title %d: %w", t.ID, err)
		}
	}
	for _, u := range ref.Units {
		if _, err := tx.Exec(`INSERT INTO BusinessUnit (BusinessUnitID, BusinessUnitName) VALUES (?, ?)`, u.ID, u.Name); err != nil {
			return fmt.Errorf("inserting business unit %d: %w", u.ID, err)
		}
	}
	for _, l := range ref.Locations {
		if _, err := tx.Exec(`INSERT INTO Location (LocationID, State, City) VALUES (?, ?, ?)`, l.ID, l.State, l.City); err != nil {
			return fmt.Errorf("inserting location %d: %w", l.ID, err)
		}
	}
	for _, c := range ref.Clients {
		if _, err := tx.Exec(`INSERT INTO Client (ClientID, ClientName, LocationID, PhoneNumber, Email) VALUES (?, ?, ?, ?, ?)`,
			c.ID, c.Name, c.LocationID, c.Phone, c.Email); err != nil {
			return fmt.Errorf("inserting client %d: %w", c.ID, err)
		}
	}
	return nil
}

func flushWorkforce(tx *sql.Tx, wf *store.Workforce) error {
	insertConsultant, err := tx.Prepare(`INSERT INTO Consultant
		(ConsultantID, BusinessUnitID, FirstName, LastName, Email, Contact, HireYear)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing consultant insert: %w", err)
	}
	defer insertConsultant.Close()

	for _, c := range wf.Consultants() {
		if _, err := insertConsultant.Exec(c.ID, c.BusinessUnitID, c.FirstName, c.LastName, c.Email, c.Phone, c.HireYear); err != nil {
			return fmt.Errorf("inserting consultant %s: %w", c.ID, err)
		}
	}

	insertEntry, err := tx.Prepare(`INSERT INTO Consultant_Title_History
		(ConsultantID, TitleID, StartDate, EndDate, EventType, Salary)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing title history insert: %w", err)
	}
	defer insertEntry.Close()

	for _, e := range wf.AllHistory() {
		if _, err := insertEntry.Exec(e.ConsultantID, e.TitleID, dateString(e.StartDate), nullableDate(e.EndDate), string(e.Event), e.Salary); err != nil {
			return fmt.Errorf("inserting title history for %s: %w", e.ConsultantID, err)
		}
	}
	return nil
}

func flushPayroll(tx *sql.Tx, payroll []domain.PayrollRecord) error {
	insert, err := tx.Prepare(`INSERT INTO Payroll (ConsultantID, Amount, EffectiveDate) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing payroll insert: %w", err)
	}
	defer insert.Close()

	for _, rec := range payroll {
		if _, err := insert.Exec(rec.ConsultantID, rec.Amount.InexactFloat64(), dateString(rec.EffectiveDate)); err != nil {
			return fmt.Errorf("inserting payroll for %s: %w", rec.ConsultantID, err)
		}
	}
	return nil
}

func flushProjects(tx *sql.Tx, pr *store.Projects) error {
	insertProject, err := tx.Prepare(`INSERT INTO Project
		(ProjectID, ClientID, UnitID, Name, Type, Status,
		 PlannedStartDate, PlannedEndDate, ActualStartDate, ActualEndDate,
		 Price, EstimatedBudget, PlannedHours, ActualHours, Progress, CreatedAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing project insert: %w", err)
	}
	defer insertProject.Close()

	insertAssignment, err := tx.Prepare(`INSERT INTO ProjectTeam
		(ProjectID, ConsultantID, Role, StartDate, EndDate) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing team insert: %w", err)
	}
	defer insertAssignment.Close()

	insertDeliverable, err := tx.Prepare(`INSERT INTO Deliverable
		(DeliverableID, ProjectID, Name, PlannedStartDate, ActualStartDate, Status,
		 Price, DueDate, SubmissionDate, InvoicedDate, Progress, PlannedHours, ActualHours)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing deliverable insert: %w", err)
	}
	defer insertDeliverable.Close()

	insertRate, err := tx.Prepare(`INSERT INTO ProjectBillingRate (ProjectID, TitleID, Rate) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing billing rate insert: %w", err)
	}
	defer insertRate.Close()

	for _, proj := range pr.All() {
		if _, err := insertProject.Exec(
			proj.ID, proj.ClientID, proj.UnitID, proj.Name, string(proj.Kind), string(proj.Status),
			dateString(proj.PlannedStart), dateString(proj.PlannedEnd), dateString(proj.ActualStart), nullableDate(proj.ActualEnd),
			nullableMoney(proj.Price), nullableMoney(proj.Budget), proj.PlannedHours, proj.ActualHours, proj.Progress,
			dateString(proj.CreatedAt),
		); err != nil {
			return fmt.Errorf("inserting project %s: %w", proj.ID, err)
		}

		for _, a := range pr.Team(proj.ID) {
			if _, err := insertAssignment.Exec(a.ProjectID, a.ConsultantID, string(a.Role), dateString(a.StartDate), nullableDate(a.EndDate)); err != nil {
				return fmt.Errorf("inserting assignment on %s: %w", proj.ID, err)
			}
		}

		for _, d := range pr.Deliverables(proj.ID) {
			if _, err := insertDeliverable.Exec(
				d.ID, d.ProjectID, d.Name, dateString(d.PlannedStart), nullableDate(d.ActualStart), string(d.Status),
				nullableMoney(d.Price), dateString(d.DueDate), nullableDate(d.SubmissionDate), nullableDate(d.InvoicedDate),
				d.Progress, d.PlannedHours, d.ActualHours,
			); err != nil {
				return fmt.Errorf("inserting deliverable %s: %w", d.ID, err)
			}
		}

		for _, r := range pr.BillingRates(proj.ID) {
			if _, err := insertRate.Exec(r.ProjectID, r.TitleID, r.Rate.InexactFloat64()); err != nil {
				return fmt.Errorf("inserting billing rate on %s: %w", proj.ID, err)
			}
		}
	}

	insertCharge, err := tx.Prepare(`INSERT INTO Consultant_Deliverable (ConsultantID, DeliverableID, Date, Hours) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing charge insert: %w", err)
	}
	defer insertCharge.Close()

	for _, ch := range pr.Charges() {
		if _, err := insertCharge.Exec(ch.ConsultantID, ch.DeliverableID, dateString(ch.Date), ch.Hours); err != nil {
			return fmt.Errorf("inserting charge for %s: %w", ch.ConsultantID, err)
		}
	}

	insertExpense, err := tx.Prepare(`INSERT INTO ProjectExpense
		(ProjectID, DeliverableID, Date, Amount, Description, Category, IsBillable)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing expense insert: %w", err)
	}
	defer insertExpense.Close()

	for _, e := range pr.Expenses() {
		if _, err := insertExpense.Exec(e.ProjectID, e.DeliverableID, dateString(e.Date), e.Amount.InexactFloat64(), e.Description, e.Category, boolToInt(e.Billable)); err != nil {
			return fmt.Errorf("inserting expense on %s: %w", e.ProjectID, err)
		}
	}
	return nil
}
