package db

import (
	"database/sql"
	"fmt"
)

// Migrate runs all schema migrations.
func Migrate(database *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := database.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS Title (
		TitleID INTEGER PRIMARY KEY,
		Title   TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS BusinessUnit (
		BusinessUnitID   INTEGER PRIMARY KEY,
		BusinessUnitName TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS Location (
		LocationID INTEGER PRIMARY KEY,
		State      TEXT NOT NULL,
		City       TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS Client (
		ClientID    INTEGER PRIMARY KEY,
		ClientName  TEXT NOT NULL,
		LocationID  INTEGER NOT NULL REFERENCES Location(LocationID),
		PhoneNumber TEXT NOT NULL,
		Email       TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS Consultant (
		ConsultantID   TEXT PRIMARY KEY,
		BusinessUnitID INTEGER NOT NULL REFERENCES BusinessUnit(BusinessUnitID),
		FirstName      TEXT NOT NULL,
		LastName       TEXT NOT NULL,
		Email          TEXT NOT NULL,
		Contact        TEXT NOT NULL,
		HireYear       INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS Consultant_Title_History (
		ID           INTEGER PRIMARY KEY AUTOINCREMENT,
		ConsultantID TEXT NOT NULL REFERENCES Consultant(ConsultantID),
		TitleID      INTEGER NOT NULL REFERENCES Title(TitleID),
		StartDate    TEXT NOT NULL,
		EndDate      TEXT,
		EventType    TEXT NOT NULL,
		Salary       INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_title_history_consultant ON Consultant_Title_History(ConsultantID)`,

	`CREATE TABLE IF NOT EXISTS Payroll (
		PayRollID     INTEGER PRIMARY KEY AUTOINCREMENT,
		ConsultantID  TEXT NOT NULL REFERENCES Consultant(ConsultantID),
		Amount        REAL NOT NULL,
		EffectiveDate TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_payroll_consultant ON Payroll(ConsultantID)`,

	`CREATE TABLE IF NOT EXISTS Project (
		ProjectID        TEXT PRIMARY KEY,
		ClientID         INTEGER NOT NULL REFERENCES Client(ClientID),
		UnitID           INTEGER NOT NULL REFERENCES BusinessUnit(BusinessUnitID),
		Name             TEXT NOT NULL,
		Type             TEXT NOT NULL CHECK(Type IN ('Fixed','Time and Material')),
		Status           TEXT NOT NULL,
		PlannedStartDate TEXT NOT NULL,
		PlannedEndDate   TEXT NOT NULL,
		ActualStartDate  TEXT NOT NULL,
		ActualEndDate    TEXT,
		Price            REAL,
		EstimatedBudget  REAL,
		PlannedHours     REAL NOT NULL,
		ActualHours      REAL NOT NULL,
		Progress         INTEGER NOT NULL,
		CreatedAt        TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_project_client ON Project(ClientID)`,

	`CREATE TABLE IF NOT EXISTS ProjectTeam (
		ID           INTEGER PRIMARY KEY AUTOINCREMENT,
		ProjectID    TEXT NOT NULL REFERENCES Project(ProjectID),
		ConsultantID TEXT NOT NULL REFERENCES Consultant(ConsultantID),
		Role         TEXT NOT NULL,
		StartDate    TEXT NOT NULL,
		EndDate      TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_team_project ON ProjectTeam(ProjectID)`,

	`CREATE TABLE IF NOT EXISTS Deliverable (
		DeliverableID    TEXT PRIMARY KEY,
		ProjectID        TEXT NOT NULL REFERENCES Project(ProjectID),
		Name             TEXT NOT NULL,
		PlannedStartDate TEXT NOT NULL,
		ActualStartDate  TEXT,
		Status           TEXT NOT NULL,
		Price            REAL,
		DueDate          TEXT NOT NULL,
		SubmissionDate   TEXT,
		InvoicedDate     TEXT,
		Progress         INTEGER NOT NULL,
		PlannedHours     REAL NOT NULL,
		ActualHours      REAL NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_deliverable_project ON Deliverable(ProjectID)`,

	`CREATE TABLE IF NOT EXISTS ProjectBillingRate (
		BillingRateID INTEGER PRIMARY KEY AUTOINCREMENT,
		ProjectID     TEXT NOT NULL REFERENCES Project(ProjectID),
		TitleID       INTEGER NOT NULL REFERENCES Title(TitleID),
		Rate          REAL NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS Consultant_Deliverable (
		ID            INTEGER PRIMARY KEY AUTOINCREMENT,
		ConsultantID  TEXT NOT NULL REFERENCES Consultant(ConsultantID),
		DeliverableID TEXT NOT NULL REFERENCES Deliverable(DeliverableID),
		Date          TEXT NOT NULL,
		Hours         REAL NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_charge_deliverable ON Consultant_Deliverable(DeliverableID)`,
	`CREATE INDEX IF NOT EXISTS idx_charge_consultant_date ON Consultant_Deliverable(ConsultantID, Date)`,

	`CREATE TABLE IF NOT EXISTS ProjectExpense (
		ProjectExpenseID INTEGER PRIMARY KEY AUTOINCREMENT,
		ProjectID        TEXT NOT NULL REFERENCES Project(ProjectID),
		DeliverableID    TEXT NOT NULL REFERENCES Deliverable(DeliverableID),
		Date             TEXT NOT NULL,
		Amount           REAL NOT NULL,
		Description      TEXT NOT NULL,
		Category         TEXT NOT NULL,
		IsBillable       INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_expense_project ON ProjectExpense(ProjectID)`,
}
