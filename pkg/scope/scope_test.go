package scope

import (
	"net/url"
	"strings"
	"testing"

	"github.com/SuryanshShukla1002/Todo-Backend/pkg/models"
)

func TestParseFilters(t *testing.T) {
	q := url.Values{}
	q.Set("category", " Urgent ")
	q.Set("completed", "true")
	q.Set("search", "groceries")
	f := ParseFilters(q)
	if f.Category != "Urgent" || f.Search != "groceries" {
		t.Fatalf("unexpected filters: %+v", f)
	}
	if f.Completed == nil || !*f.Completed {
		t.Fatalf("expected completed=true, got %+v", f.Completed)
	}
}

func TestParseFiltersCompletedNonTrueMeansFalse(t *testing.T) {
	q := url.Values{}
	q.Set("completed", "yes")
	f := ParseFilters(q)
	if f.Completed == nil || *f.Completed {
		t.Fatalf("expected completed=false for non-true value, got %+v", f.Completed)
	}
	if ParseFilters(url.Values{}).Completed != nil {
		t.Fatal("absent completed param must not filter")
	}
}

func TestBuildMemberAlwaysOwnerScoped(t *testing.T) {
	where, args := Build(models.RoleMember, "u1", Filters{})
	if where != " WHERE t.owner_id = $1" {
		t.Fatalf("unexpected where: %q", where)
	}
	if len(args) != 1 || args[0] != "u1" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestBuildMemberFiltersOnlyNarrow(t *testing.T) {
	completed := true
	where, args := Build(models.RoleMember, "u1", Filters{
		Category:  "Urgent",
		Completed: &completed,
		Search:    "milk",
	})
	// Owner restriction must come first and survive every filter combination.
	if !strings.HasPrefix(where, " WHERE t.owner_id = $1 AND ") {
		t.Fatalf("owner scoping missing or misplaced: %q", where)
	}
	if !strings.Contains(where, "t.category = $2") ||
		!strings.Contains(where, "t.completed = $3") ||
		!strings.Contains(where, "t.title ILIKE $4") {
		t.Fatalf("unexpected where: %q", where)
	}
	want := []any{"u1", "Urgent", true, "%milk%"}
	if len(args) != len(want) {
		t.Fatalf("unexpected args: %v", args)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("arg %d = %v, want %v", i, args[i], want[i])
		}
	}
}

func TestBuildAdminUnscoped(t *testing.T) {
	where, args := Build(models.RoleAdmin, "admin-1", Filters{})
	if where != "" || args != nil {
		t.Fatalf("admin with no filters must be unrestricted, got %q %v", where, args)
	}
	where, args = Build(models.RoleAdmin, "admin-1", Filters{Category: "Urgent"})
	if where != " WHERE t.category = $1" || len(args) != 1 {
		t.Fatalf("unexpected admin filter: %q %v", where, args)
	}
	if strings.Contains(where, "owner_id") {
		t.Fatalf("admin query must not be owner scoped: %q", where)
	}
}

func TestBuildEscapesLikeMetacharacters(t *testing.T) {
	_, args := Build(models.RoleMember, "u1", Filters{Search: `50%_done\`})
	got := args[len(args)-1].(string)
	if got != `%50\%\_done\\%` {
		t.Fatalf("unexpected escaped pattern: %q", got)
	}
}
