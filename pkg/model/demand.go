package model

// CatalogSnapshot 是求解开始时刻目录数据的不可变快照：员工、班次、需求
// 一旦拍照完成，求解过程中的目录变更不会影响本次任务。
type CatalogSnapshot struct {
	TakenAt   string
	Employees map[string]*Employee // key: EmployeeID
	Shifts    map[string]*Shift    // key: ShiftID
	Demands   []*Demand
}

// EmployeeByID 按业务ID查找员工，找不到返回nil
func (c *CatalogSnapshot) EmployeeByID(id string) *Employee {
	return c.Employees[id]
}

// ShiftByID 按业务ID查找班次，找不到返回nil
func (c *CatalogSnapshot) ShiftByID(id string) *Shift {
	return c.Shifts[id]
}

// DemandsInHorizon 返回落在给定日期集合内的需求行
func (c *CatalogSnapshot) DemandsInHorizon(days []string) []*Demand {
	dayset := make(map[string]bool, len(days))
	for _, d := range days {
		dayset[d] = true
	}
	var out []*Demand
	for _, d := range c.Demands {
		if dayset[d.Date] {
			out = append(out, d)
		}
	}
	return out
}
