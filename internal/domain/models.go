package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Enumerations
const (
	RoleAdmin      UserRole = "admin"
	RoleManager    UserRole = "manager"
	RoleAccountant UserRole = "accountant"
	RoleStaff      UserRole = "staff"

	DirectionDebit  LedgerDirection = "debit"
	DirectionCredit LedgerDirection = "credit"

	LedgerPending   LedgerStatus = "pending"
	LedgerConfirmed LedgerStatus = "confirmed"
	LedgerCancelled LedgerStatus = "cancelled"

	SourceManual         LedgerSource = "manual"
	SourceAdvanceRequest LedgerSource = "advance_request"
	SourceSalary         LedgerSource = "salary"
	SourceClosure        LedgerSource = "closure"
	SourceOther          LedgerSource = "other"

	AdvancePending   AdvanceStatus = "pending"
	AdvanceApproved  AdvanceStatus = "approved"
	AdvanceRejected  AdvanceStatus = "rejected"
	AdvanceCancelled AdvanceStatus = "cancelled"

	EntrySourceWeb    EntrySource = "web"
	EntrySourceMobile EntrySource = "mobile"
	EntrySourceAPI    EntrySource = "api"

	DocumentSafe    DocumentStatus = "safe"
	DocumentNear    DocumentStatus = "near"
	DocumentUrgent  DocumentStatus = "urgent"
	DocumentExpired DocumentStatus = "expired"

	NotificationInfo    NotificationType = "info"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

type UserRole string
type LedgerDirection string
type LedgerStatus string
type LedgerSource string
type AdvanceStatus string
type EntrySource string
type DocumentStatus string
type NotificationType string

// Valid reports whether the direction is one of debit/credit.
func (d LedgerDirection) Valid() bool {
	return d == DirectionDebit || d == DirectionCredit
}

// Valid reports whether the status is a known ledger status.
func (s LedgerStatus) Valid() bool {
	return s == LedgerPending || s == LedgerConfirmed || s == LedgerCancelled
}

// Valid reports whether the source is a known ledger source.
func (s LedgerSource) Valid() bool {
	switch s {
	case SourceManual, SourceAdvanceRequest, SourceSalary, SourceClosure, SourceOther:
		return true
	}
	return false
}

// Valid reports whether the status is a known advance-request status.
func (s AdvanceStatus) Valid() bool {
	switch s {
	case AdvancePending, AdvanceApproved, AdvanceRejected, AdvanceCancelled:
		return true
	}
	return false
}

type User struct {
	ID           int64
	BranchID     *int64
	Name         string
	Email        string
	Role         UserRole
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

type Branch struct {
	ID        int64
	Name      string
	Code      string
	Address   string
	Phone     string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

type Employee struct {
	ID                    int64
	BranchID              int64
	Name                  string
	Role                  string
	Phone                 string
	Email                 string
	JoinDate              time.Time
	DefaultCommissionRate *decimal.Decimal
	Active                bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
	DeletedAt             *time.Time
}

// DailyEntry is one employee's sales record for one day. At most one
// non-deleted row exists per (employee, date); Net and Commission are
// derived and recomputed on every write.
type DailyEntry struct {
	ID                int64
	BranchID          int64
	EmployeeID        int64
	Date              time.Time
	Sales             decimal.Decimal
	Cash              decimal.Decimal
	Expense           decimal.Decimal
	CommissionRate    decimal.Decimal
	Commission        decimal.Decimal
	Bonus             decimal.Decimal
	BonusReason       string
	Note              string
	TransactionsCount int
	Source            EntrySource
	Net               decimal.Decimal
	IsLocked          bool
	LockedAt          *time.Time
	LockedBy          *int64
	CreatedBy         int64
	UpdatedBy         *int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         *time.Time
}

// TotalEarnings is commission plus bonus.
func (e DailyEntry) TotalEarnings() decimal.Decimal {
	return e.Commission.Add(e.Bonus)
}

// DayClosure is a write-once snapshot of a branch's entries for one date.
// Totals are frozen at closure time and never reconciled afterwards.
type DayClosure struct {
	ID              int64
	BranchID        int64
	Date            time.Time
	TotalSales      decimal.Decimal
	TotalCash       decimal.Decimal
	TotalExpense    decimal.Decimal
	TotalNet        decimal.Decimal
	TotalCommission decimal.Decimal
	TotalBonus      decimal.Decimal
	EntriesCount    int
	EmployeesCount  int
	ClosedBy        int64
	ClosedAt        time.Time
	PDFPath         string
	PDFGeneratedAt  *time.Time
	Notes           string
}

// Reference links a ledger entry back to the workflow that produced it.
type Reference struct {
	Type string
	ID   int64
}

type LedgerEntry struct {
	ID            int64
	Party         Party
	Date          time.Time
	Direction     LedgerDirection
	Amount        decimal.Decimal
	Description   string
	Category      string
	Source        LedgerSource
	Reference     *Reference
	PaymentMethod string
	Status        LedgerStatus
	CreatedBy     int64
	UpdatedBy     *int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
}

type AdvanceRequest struct {
	ID              int64
	EmployeeID      int64
	BranchID        int64
	Amount          decimal.Decimal
	Reason          string
	Status          AdvanceStatus
	RequestedAt     time.Time
	ProcessedAt     *time.Time
	ProcessedBy     *int64
	DecisionNotes   string
	RejectionReason string
	PaymentDate     *time.Time
	PaymentMethod   string
	Attachment      string
	LedgerEntryID   *int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time
}

type Document struct {
	ID         int64
	Owner      Party
	Title      string
	Number     string
	ExpiryDate *time.Time
	Notes      string
	Files      []DocumentFile
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}

// DocumentFile is one stored version of a document attachment.
type DocumentFile struct {
	ID         int64
	DocumentID int64
	Version    int
	FileName   string
	FilePath   string
	UploadedBy int64
	UploadedAt time.Time
}

type Notification struct {
	ID        int64
	UserID    *int64
	Title     string
	Message   string
	Type      NotificationType
	CreatedAt time.Time
	ReadAt    *time.Time
	DeletedAt *time.Time
}
