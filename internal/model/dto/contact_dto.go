package dto

// ContactReveal 联系方式解锁结果
// source 标记扣减来源：paid（套餐额度）或 free（免费解锁）
type ContactReveal struct {
	AdNumber    string `json:"ad_number"`
	OwnerName   string `json:"owner_name"`
	CompanyName string `json:"company_name,omitempty"`
	Phone       string `json:"phone"`
	Email       string `json:"email,omitempty"`
	Source      string `json:"source"` // paid | free
}
