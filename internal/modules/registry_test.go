package modules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomworks/tenantdb/internal/dag"
	"github.com/loomworks/tenantdb/internal/schema"
)

func TestRegistry_ModuleNamesUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, mod := range Registry() {
		require.NotEmpty(t, mod.Name())
		assert.False(t, seen[mod.Name()], "module %s registered twice", mod.Name())
		seen[mod.Name()] = true
	}
}

func TestRegistry_DependenciesRegistered(t *testing.T) {
	mods := Registry()
	names := make(map[string]bool, len(mods))
	for _, mod := range mods {
		names[mod.Name()] = true
	}
	for _, mod := range mods {
		for _, dep := range mod.DependsOn() {
			assert.True(t, names[dep], "module %s depends on unregistered %s", mod.Name(), dep)
			assert.NotEqual(t, mod.Name(), dep, "module %s depends on itself", mod.Name())
		}
	}
}

func TestRegistry_Acyclic(t *testing.T) {
	g := dag.NewGraph()
	for _, mod := range Registry() {
		g.AddNode(mod.Name())
	}
	for _, mod := range Registry() {
		for _, dep := range mod.DependsOn() {
			require.NoError(t, g.AddEdge(dep, mod.Name()))
		}
	}
	order, err := g.TopologicalSort()
	require.NoError(t, err)
	assert.Len(t, order, len(Registry()))
}

func TestRegistry_TableSpecsValid(t *testing.T) {
	for _, mod := range Registry() {
		require.NotEmpty(t, mod.Tables(), "module %s declares no tables", mod.Name())
		for _, tb := range mod.Tables() {
			assert.NoError(t, tb.Validate(), "module %s table %s", mod.Name(), tb.Name)
		}
	}
}

func TestRegistry_TableOwnershipUnique(t *testing.T) {
	owners := make(map[string]string)
	for _, mod := range Registry() {
		for _, tb := range mod.Tables() {
			prev, taken := owners[tb.Name]
			assert.False(t, taken, "table %s owned by both %s and %s", tb.Name, prev, mod.Name())
			owners[tb.Name] = mod.Name()
		}
	}
}

// Every required foreign key must target a table owned by the module
// itself or by something upstream of it. Optional keys may point anywhere.
func TestRegistry_RequiredForeignKeysRespectDependencies(t *testing.T) {
	mods := Registry()

	g := dag.NewGraph()
	for _, mod := range mods {
		g.AddNode(mod.Name())
	}
	for _, mod := range mods {
		for _, dep := range mod.DependsOn() {
			require.NoError(t, g.AddEdge(dep, mod.Name()))
		}
	}

	owners := make(map[string]string)
	for _, mod := range mods {
		for _, tb := range mod.Tables() {
			owners[tb.Name] = mod.Name()
		}
	}

	for _, mod := range mods {
		allowed := map[string]bool{mod.Name(): true}
		for _, dep := range g.TransitiveDependencies(mod.Name()) {
			allowed[dep] = true
		}
		for _, tb := range mod.Tables() {
			for _, ref := range tb.ReferencedTables(false) {
				owner, known := owners[ref]
				require.True(t, known, "module %s table %s references unowned table %s", mod.Name(), tb.Name, ref)
				assert.True(t, allowed[owner],
					"module %s table %s requires %s owned by %s without depending on it",
					mod.Name(), tb.Name, ref, owner)
			}
		}
	}
}

func TestRegistry_OptionalForeignKeyTargetsExist(t *testing.T) {
	owners := make(map[string]bool)
	for _, mod := range Registry() {
		for _, tb := range mod.Tables() {
			owners[tb.Name] = true
		}
	}
	for _, mod := range Registry() {
		for _, tb := range mod.Tables() {
			for _, fk := range tb.ForeignKeys {
				if !fk.Optional {
					continue
				}
				assert.True(t, owners[fk.RefTable],
					"module %s table %s optional key %s targets unowned table %s",
					mod.Name(), tb.Name, fk.Name, fk.RefTable)
			}
		}
	}
}

func TestRegistry_CriticalTablesOwned(t *testing.T) {
	owners := make(map[string]bool)
	for _, mod := range Registry() {
		for _, tb := range mod.Tables() {
			owners[tb.Name] = true
		}
	}
	for _, table := range CriticalTables {
		assert.True(t, owners[table], "critical table %s has no owning module", table)
	}
}

// Audited tables write to audit_logs through the shared trigger function,
// so their module must run after the system module that owns audit_logs.
func TestRegistry_AuditedTablesDependOnSystem(t *testing.T) {
	mods := Registry()

	g := dag.NewGraph()
	for _, mod := range mods {
		g.AddNode(mod.Name())
	}
	for _, mod := range mods {
		for _, dep := range mod.DependsOn() {
			require.NoError(t, g.AddEdge(dep, mod.Name()))
		}
	}

	for _, mod := range mods {
		if mod.Name() == "system" {
			continue
		}
		audited := false
		for _, tb := range mod.Tables() {
			if tb.Audited {
				audited = true
				break
			}
		}
		if !audited {
			continue
		}
		upstream := g.TransitiveDependencies(mod.Name())
		assert.Contains(t, upstream, "system",
			"module %s has audited tables but does not run after system", mod.Name())
	}
}

// A tenant-scoped table that declares the discriminator column directly
// must match the canonical shape, or the retrofit migration and the base
// declaration would diverge.
func TestRegistry_TenantDiscriminatorShapeConsistent(t *testing.T) {
	canonical := schema.TenantDiscriminator().Column
	for _, mod := range Registry() {
		for _, tb := range mod.Tables() {
			if !tb.TenantScoped {
				continue
			}
			for _, c := range tb.Columns {
				if c.Name != schema.TenantDiscriminatorColumn {
					continue
				}
				assert.Equal(t, canonical.Type, c.Type, "module %s table %s", mod.Name(), tb.Name)
				assert.Equal(t, canonical.Default, c.Default, "module %s table %s", mod.Name(), tb.Name)
			}
		}
	}
}

func TestRegistry_IndexAndConstraintNamesUnique(t *testing.T) {
	indexNames := make(map[string]string)
	fkNames := make(map[string]string)
	for _, mod := range Registry() {
		for _, tb := range mod.Tables() {
			for _, ix := range tb.Indexes {
				prev, taken := indexNames[ix.Name]
				assert.False(t, taken, "index %s declared on both %s and %s", ix.Name, prev, tb.Name)
				indexNames[ix.Name] = tb.Name
			}
			for _, fk := range tb.ForeignKeys {
				prev, taken := fkNames[fk.Name]
				assert.False(t, taken, "foreign key %s declared on both %s and %s", fk.Name, prev, tb.Name)
				fkNames[fk.Name] = tb.Name
			}
		}
	}
}
