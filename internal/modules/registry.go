package modules

// Registry returns the fixed set of schema modules. Order here is
// irrelevant; the engine derives execution order from the declared
// dependencies.
func Registry() []Module {
	return []Module{
		systemModule(),
		identityModule(),
		organizationModule(),
		hrCoreModule(),
		attendanceModule(),
		leaveModule(),
		payrollModule(),
		recruitmentModule(),
		crmModule(),
		salesModule(),
		projectsModule(),
		workflowModule(),
		financeModule(),
		billingModule(),
		inventoryModule(),
		procurementModule(),
		messagingModule(),
		notificationsModule(),
		documentsModule(),
		reportingModule(),
	}
}

// CriticalTables is the set the final verification pass re-reads from the
// catalog after a full run. A missing entry means a module silently
// swallowed a failure it should have propagated.
var CriticalTables = []string{
	"audit_logs",
	"users",
	"companies",
	"employees",
	"clients",
	"projects",
	"tasks",
	"invoices",
	"items",
	"messages",
}
