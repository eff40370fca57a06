package coinsdk

import "errors"

// ============================================================================
// Roles & Users
// ============================================================================

// ErrMalformedUser reports a server user payload missing required fields.
// Callers treat it as a fetch failure, never as a crash.
var ErrMalformedUser = errors.New("coinsdk: malformed user payload")

// Role is the product role carried in the user record. The four roles drive
// both authorization decisions and which dashboard a user lands on.
type Role string

const (
	RoleParent       Role = "parent"
	RoleTeacher      Role = "teacher"
	RoleYoungerChild Role = "younger_child"
	RoleOlderChild   Role = "older_child"
)

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleParent, RoleTeacher, RoleYoungerChild, RoleOlderChild:
		return true
	}
	return false
}

// IsChild reports whether r is either child role.
func (r Role) IsChild() bool {
	return r == RoleYoungerChild || r == RoleOlderChild
}

// IsTeen reports whether r is the older-child role.
func (r Role) IsTeen() bool { return r == RoleOlderChild }

// User is the current-user record as served by the backend.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	Coins     int    `json:"coins,omitempty"` // only present for child roles
	AvatarURL string `json:"avatar_url,omitempty"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// Validate checks the fields the client cannot operate without.
func (u User) Validate() error {
	if u.ID == "" || u.Email == "" || !u.Role.Valid() {
		return ErrMalformedUser
	}
	return nil
}

// ============================================================================
// Goals
// ============================================================================

// Goal is a savings goal owned by a child user. Amounts are in coins.
type Goal struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	TargetAmount  int    `json:"target_amount"`
	CurrentAmount int    `json:"current_amount"`
	Icon          string `json:"icon,omitempty"`
	Color         string `json:"color,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at,omitempty"`
}

// Completed reports whether the goal has reached its target.
func (g Goal) Completed() bool {
	return g.TargetAmount > 0 && g.CurrentAmount >= g.TargetAmount
}

// CreateGoalRequest is the body for creating a goal.
type CreateGoalRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	TargetAmount int    `json:"target_amount"`
	Icon         string `json:"icon,omitempty"`
	Color        string `json:"color,omitempty"`
}

// ContributeResponse is returned by the goal-contribution endpoint. The
// backend settles the authoritative balance and goal progress; the client
// overwrites any optimistic prediction with these values.
type ContributeResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message,omitempty"`
	Goal           Goal   `json:"goal"`
	RemainingCoins int    `json:"remaining_coins"`
}

// ============================================================================
// Transactions
// ============================================================================

// TransactionType distinguishes the three coin movements the product knows.
type TransactionType string

const (
	TransactionEarn  TransactionType = "earn"
	TransactionSpend TransactionType = "spend"
	TransactionSave  TransactionType = "save" // goal contribution
)

// Transaction is a single coin movement on a user's ledger.
type Transaction struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Type          TransactionType `json:"type"`
	Amount        int             `json:"amount"`
	Description   string          `json:"description"`
	Category      string          `json:"category,omitempty"`
	ReferenceID   string          `json:"reference_id,omitempty"`
	ReferenceType string          `json:"reference_type,omitempty"`
	CreatedAt     string          `json:"created_at"`
}

// CreateTransactionRequest is the body for recording an earn or spend.
type CreateTransactionRequest struct {
	Type        TransactionType `json:"type"`
	Amount      int             `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category,omitempty"`
}

// TransactionResponse carries the recorded transaction plus the
// backend-confirmed balance after it was applied.
type TransactionResponse struct {
	Transaction Transaction `json:"transaction"`
	Balance     int         `json:"balance"`
}

// ============================================================================
// Tasks
// ============================================================================

// TaskStatus tracks a chore through its lifecycle. Completion by the child
// may still require parental approval before the reward pays out.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskApproved   TaskStatus = "approved"
)

// Task is a chore assigned to a child, usually by a parent.
type Task struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"` // the child the task is assigned to
	AssignedBy       string     `json:"assigned_by"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	Reward           int        `json:"coins_reward"`
	DueDate          string     `json:"due_date,omitempty"`
	Status           TaskStatus `json:"status"`
	RequiresApproval bool       `json:"requires_approval"`
	CreatedAt        string     `json:"created_at"`
}

// CreateTaskRequest is the body for assigning a task to a child.
type CreateTaskRequest struct {
	ChildID          string `json:"child_id"`
	Title            string `json:"title"`
	Description      string `json:"description,omitempty"`
	Reward           int    `json:"coins_reward"`
	DueDate          string `json:"due_date,omitempty"`
	RequiresApproval bool   `json:"requires_approval"`
}

// ============================================================================
// Classes
// ============================================================================

// Classroom is a teacher-owned class. Students join with the class code.
type Classroom struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Description        string  `json:"description,omitempty"`
	TeacherID          string  `json:"teacher_id"`
	AgeGroup           string  `json:"age_group"`
	ClassCode          string  `json:"class_code"`
	IsActive           bool    `json:"is_active"`
	CreatedAt          string  `json:"created_at"`
	StudentsCount      int     `json:"students_count,omitempty"`
	AveragePerformance float64 `json:"average_performance,omitempty"`
}

// Student is a class-roster view of a child user.
type Student struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	Coins     int    `json:"coins"`
	Level     int    `json:"level,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// CreateClassRequest is the body for creating a class.
type CreateClassRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	AgeGroup    string `json:"age_group"`
}

// ============================================================================
// Shop & Redemptions
// ============================================================================

// ShopItem is a purchasable reward in the coin shop. Price is in coins.
type ShopItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       int    `json:"price"`
	Category    string `json:"category,omitempty"`
	Available   bool   `json:"available"`
}

// PurchaseResponse is returned by the shop purchase endpoint.
type PurchaseResponse struct {
	Success        bool     `json:"success"`
	Message        string   `json:"message,omitempty"`
	Item           ShopItem `json:"item"`
	RemainingCoins int      `json:"remaining_coins"`
}

// RequestStatus is the resolution state of a parent-approved request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// Resolved reports whether the request has left the pending state.
func (s RequestStatus) Resolved() bool { return s != RequestPending }

// RedemptionRequest is a child's ask to convert coins into money or a shop
// item. It stays pending until a parent resolves it; the client never
// predicts its outcome locally.
type RedemptionRequest struct {
	ID           string        `json:"id"`
	UserID       string        `json:"user_id"`
	ItemName     string        `json:"item_name,omitempty"`
	CoinAmount   int           `json:"coin_amount"`
	DollarAmount float64       `json:"dollar_amount,omitempty"`
	Reason       string        `json:"reason,omitempty"`
	Status       RequestStatus `json:"status"`
	ApprovedBy   string        `json:"approved_by,omitempty"`
	CreatedAt    string        `json:"created_at"`
	ResolvedAt   string        `json:"resolved_at,omitempty"`
}

// CreateConversionRequest is the body for asking to convert coins to money.
type CreateConversionRequest struct {
	CoinAmount   int     `json:"coin_amount"`
	DollarAmount float64 `json:"dollar_amount"`
	Reason       string  `json:"reason,omitempty"`
}

// ============================================================================
// Parent
// ============================================================================

// Child is a parent-dashboard view of one of the parent's children.
type Child struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Age          int    `json:"age"`
	Coins        int    `json:"coins"`
	Level        int    `json:"level"`
	StreakDays   int    `json:"streak_days"`
	GoalsActive  int    `json:"goals_active,omitempty"`
	AvatarURL    string `json:"avatar_url,omitempty"`
	LastActivity string `json:"last_activity,omitempty"`
}

// AddChildRequest is the body for creating a child account under the
// authenticated parent.
type AddChildRequest struct {
	Name      string `json:"name"`
	Age       int    `json:"age"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// AddChildResponse carries the created child record and its generated
// password. The password is returned exactly once; the client may cache it
// locally for the parent to review but never sends it back.
type AddChildResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	Child    User   `json:"child"`
	Password string `json:"password"`
}

// ============================================================================
// Dashboards
// ============================================================================

// DashboardStats are the headline numbers on a role dashboard.
type DashboardStats struct {
	TotalCoins     int     `json:"total_coins"`
	Level          int     `json:"level"`
	StreakDays     int     `json:"streak_days"`
	GoalsCount     int     `json:"goals_count"`
	CompletedTasks int     `json:"completed_tasks"`
	TotalStudents  int     `json:"total_students,omitempty"`  // teacher only
	TotalClasses   int     `json:"total_classes,omitempty"`   // teacher only
	AvgPerformance float64 `json:"avg_performance,omitempty"` // teacher only
}

// Dashboard is the role-specific aggregate the backend assembles per user.
type Dashboard struct {
	User               User           `json:"user"`
	Stats              DashboardStats `json:"stats"`
	RecentTransactions []Transaction  `json:"recent_transactions,omitempty"`
	ActiveGoals        []Goal         `json:"active_goals,omitempty"`
	PendingTasks       []Task         `json:"pending_tasks,omitempty"`
	Children           []Child        `json:"children,omitempty"` // parent only
	Classes            []Classroom    `json:"classes,omitempty"`  // teacher only
}

// ============================================================================
// Auth
// ============================================================================

// TokenResponse is returned by the login endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"` // always "bearer"
}

// RegisterRequest is the body for self-service registration. Only parent and
// teacher accounts register directly; child accounts are created by parents.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// RegisterResponse is returned by the registration endpoint.
type RegisterResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// VerifyResponse is returned by the token-verification endpoint.
type VerifyResponse struct {
	User  User `json:"user"`
	Valid bool `json:"valid"`
}

// LogoutResponse is returned by the logout endpoint.
type LogoutResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the backend's error envelope. FastAPI reports errors as a
// detail field which may be a string or a structured validation list; the
// client only needs the string form.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
