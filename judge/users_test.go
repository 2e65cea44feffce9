package judge

import "testing"

func TestNewUserRegistrySeedsRoot(t *testing.T) {
	users := NewUserRegistry()
	root, err := users.Get(0)
	if err != nil {
		t.Fatalf("expected root user to exist: %v", err)
	}
	if root.Name != "root" {
		t.Fatalf("expected root user name 'root', got %q", root.Name)
	}
}

func TestUserRegistryCreateAssignsIncreasingIDs(t *testing.T) {
	users := NewUserRegistry()
	a, err := users.Create("alice")
	if err != nil {
		t.Fatalf("create alice: %v", err)
	}
	if a.ID != 1 {
		t.Fatalf("expected first created user to get id 1, got %d", a.ID)
	}
	b, err := users.Create("bob")
	if err != nil {
		t.Fatalf("create bob: %v", err)
	}
	if b.ID != 2 {
		t.Fatalf("expected second created user to get id 2, got %d", b.ID)
	}
}

func TestUserRegistryRejectsDuplicateName(t *testing.T) {
	users := NewUserRegistry()
	if _, err := users.Create("alice"); err != nil {
		t.Fatalf("create alice: %v", err)
	}
	_, err := users.Create("alice")
	if KindOf(err) != KindInvalidArgument {
		t.Fatalf("expected KindInvalidArgument for duplicate name, got %v (err=%v)", KindOf(err), err)
	}
}

func TestUserRegistryUpdateRejectsCollision(t *testing.T) {
	users := NewUserRegistry()
	a, _ := users.Create("alice")
	_, _ = users.Create("bob")
	_, err := users.Update(a.ID, "bob")
	if KindOf(err) != KindInvalidArgument {
		t.Fatalf("expected KindInvalidArgument renaming into a collision, got %v (err=%v)", KindOf(err), err)
	}
}

func TestUserRegistryRestoreSkipsRootID(t *testing.T) {
	users := NewUserRegistry()
	users.Restore(User{ID: 0, Name: "should-not-override-root"})
	root, _ := users.Get(0)
	if root.Name != "root" {
		t.Fatalf("expected Restore(id=0) to be a no-op, got name %q", root.Name)
	}
	users.Restore(User{ID: 5, Name: "restored"})
	restored, err := users.Get(5)
	if err != nil {
		t.Fatalf("expected restored user at id 5: %v", err)
	}
	if restored.Name != "restored" {
		t.Fatalf("expected restored name, got %q", restored.Name)
	}
}
