package symtab

import "testing"

func TestAddAndFind(t *testing.T) {
	tbl := New()
	tbl.Add(Symbol{Name: "a", Kind: ConstKind, Level: 0, Value: 5})
	tbl.Add(Symbol{Name: "x", Kind: VarKind, Level: 0, Address: 4})

	sym, ok := tbl.Find("a")
	if !ok || sym.Kind != ConstKind || sym.Value != 5 {
		t.Errorf("Find(a) = %+v, %v", sym, ok)
	}
	sym, ok = tbl.Find("x")
	if !ok || sym.Kind != VarKind || sym.Address != 4 {
		t.Errorf("Find(x) = %+v, %v", sym, ok)
	}
	if _, ok := tbl.Find("missing"); ok {
		t.Error("Find(missing) = true, want false")
	}
}

func TestLastDeclaredWins(t *testing.T) {
	tbl := New()
	tbl.Add(Symbol{Name: "a", Kind: ConstKind, Value: 1})
	tbl.Add(Symbol{Name: "a", Kind: ConstKind, Value: 2})

	sym, ok := tbl.Find("a")
	if !ok || sym.Value != 2 {
		t.Errorf("Find(a) = %+v, want Value=2", sym)
	}
}

func TestScopeChainVisibility(t *testing.T) {
	tbl := New()
	tbl.Add(Symbol{Name: "x", Kind: VarKind, Level: 0, Address: 4})

	proc := Symbol{Name: "p", Kind: ProcKind, Level: 0}
	tbl.EnterScope(&proc)
	tbl.Add(Symbol{Name: "y", Kind: VarKind, Level: 1, Address: 4})

	if _, ok := tbl.Find("x"); !ok {
		t.Error("expected global x visible from nested scope")
	}
	if _, ok := tbl.Find("y"); !ok {
		t.Error("expected local y visible in its own scope")
	}

	tbl.ExitScope()
	if _, ok := tbl.Find("y"); ok {
		t.Error("expected y to no longer be visible after ExitScope")
	}
	if _, ok := tbl.Find("x"); !ok {
		t.Error("expected global x still visible at global scope")
	}
}

func TestSiblingScopesAreNotVisible(t *testing.T) {
	tbl := New()

	p1 := Symbol{Name: "p1", Kind: ProcKind}
	tbl.EnterScope(&p1)
	tbl.Add(Symbol{Name: "onlyInP1", Kind: VarKind})
	tbl.ExitScope()

	p2 := Symbol{Name: "p2", Kind: ProcKind}
	tbl.EnterScope(&p2)
	if _, ok := tbl.Find("onlyInP1"); ok {
		t.Error("sibling procedure's local should not be visible")
	}
}

func TestFindLocalDoesNotWalkOuterScopes(t *testing.T) {
	tbl := New()
	tbl.Add(Symbol{Name: "x", Kind: VarKind})

	proc := Symbol{Name: "p", Kind: ProcKind}
	tbl.EnterScope(&proc)
	if _, ok := tbl.FindLocal("x"); ok {
		t.Error("FindLocal should not see the enclosing scope's x")
	}
}

func TestClearResetsToGlobalScope(t *testing.T) {
	tbl := New()
	proc := Symbol{Name: "p", Kind: ProcKind}
	tbl.EnterScope(&proc)
	tbl.Add(Symbol{Name: "y", Kind: VarKind})

	tbl.Clear()
	if _, ok := tbl.Find("y"); ok {
		t.Error("expected Clear to drop all scopes and symbols")
	}
}
