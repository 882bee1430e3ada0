package dto

// ModerateRequest 审核操作（approve/reject/suspend）
type ModerateRequest struct {
	Reason string `json:"reason,omitempty" binding:"omitempty,max=2000"`
}

// AllowDuplicatesRequest 管理员查重豁免
type AllowDuplicatesRequest struct {
	AllowDuplicateAddress *bool  `json:"allow_duplicate_address,omitempty"`
	AllowDuplicatePhone   *bool  `json:"allow_duplicate_phone,omitempty"`
	Reason                string `json:"reason,omitempty" binding:"omitempty,max=2000"`
}

// ModerationLogItem 审核日志项
type ModerationLogItem struct {
	ID          int64  `json:"id"`
	ActorUserID int64  `json:"actor_user_id"`
	EntityType  string `json:"entity_type"`
	EntityID    int64  `json:"entity_id"`
	Action      string `json:"action"`
	Reason      string `json:"reason,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// PendingOwnerItem 待审核业主
type PendingOwnerItem struct {
	ID             int64  `json:"id"`
	Email          string `json:"email"`
	Username       string `json:"username"`
	Name           string `json:"name,omitempty"`
	CompanyName    string `json:"company_name,omitempty"`
	OwnerCategory  string `json:"owner_category,omitempty"`
	ApprovalStatus string `json:"approval_status"`
	CreatedAt      string `json:"created_at"`
}
