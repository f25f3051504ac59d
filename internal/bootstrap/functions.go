package bootstrap

// functions.go - shared stored procedures, created with CREATE OR REPLACE
// so repeated bootstraps are always safe. Domain modules bind these
// through trigger declarations; the bodies live here so a changed function
// rolls out to every tenant on the next reconciliation.

type sharedFunction struct {
	name string
	body string
}

var sharedFunctions = []sharedFunction{
	{
		name: "set_updated_at",
		body: `
CREATE OR REPLACE FUNCTION set_updated_at() RETURNS trigger AS $$
BEGIN
	NEW.updated_at = now();
	RETURN NEW;
END;
$$ LANGUAGE plpgsql`,
	},
	{
		name: "log_audit_event",
		body: `
CREATE OR REPLACE FUNCTION log_audit_event() RETURNS trigger AS $$
BEGIN
	IF TG_OP = 'DELETE' THEN
		INSERT INTO audit_logs (table_name, action, row_data, changed_at)
		VALUES (TG_TABLE_NAME, TG_OP, to_jsonb(OLD), now());
		RETURN OLD;
	END IF;
	INSERT INTO audit_logs (table_name, action, row_data, changed_at)
	VALUES (TG_TABLE_NAME, TG_OP, to_jsonb(NEW), now());
	RETURN NEW;
END;
$$ LANGUAGE plpgsql`,
	},
	{
		name: "sync_invoice_balance",
		body: `
CREATE OR REPLACE FUNCTION sync_invoice_balance() RETURNS trigger AS $$
BEGIN
	NEW.balance_due = COALESCE(NEW.total_amount, 0) - COALESCE(NEW.amount_paid, 0);
	RETURN NEW;
END;
$$ LANGUAGE plpgsql`,
	},
	{
		name: "sync_stock_available",
		body: `
CREATE OR REPLACE FUNCTION sync_stock_available() RETURNS trigger AS $$
BEGIN
	NEW.quantity_available = COALESCE(NEW.quantity_on_hand, 0) - COALESCE(NEW.quantity_reserved, 0);
	RETURN NEW;
END;
$$ LANGUAGE plpgsql`,
	},
}

// SharedFunctionNames returns the names of all bootstrap-installed
// functions, used by the verification pass.
func SharedFunctionNames() []string {
	names := make([]string, 0, len(sharedFunctions))
	for _, fn := range sharedFunctions {
		names = append(names, fn.name)
	}
	return names
}
