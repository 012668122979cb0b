package models

// System 系统级对象，不落库，用于站点级权限和审计
type System struct{}

// SystemName 系统对象名
const SystemName = "system"

// Name 对象名
func (System) Name() string {
	return SystemName
}

func (System) String() string {
	return "<System>"
}

// Purge 系统对象无需清理
func (System) Purge() {}

// SystemByName 总是返回系统对象
func SystemByName(name string) *System {
	return &System{}
}
