package config

import (
	"reflect"
	"testing"
	"time"
)

func TestPrefixAndKey(t *testing.T) {
	app := New().Prefix("ECOTRACK_")
	if got := app.key("DB_PATH"); got != "ECOTRACK_DB_PATH" {
		t.Fatalf("key() = %q", got)
	}
	gh := app.Prefix("GITHUB_")
	if got := gh.key("TOKEN"); got != "ECOTRACK_GITHUB_TOKEN" {
		t.Fatalf("nested key() = %q", got)
	}
}

func TestMayString(t *testing.T) {
	c := New().Prefix("T_")
	t.Setenv("T_NAME", "  veryl ")
	t.Setenv("T_BLANK", "   ")
	if got := c.MayString("NAME", "x"); got != "veryl" {
		t.Fatalf("MayString = %q", got)
	}
	if got := c.MayString("BLANK", "def"); got != "def" {
		t.Fatalf("blank should fall back, got %q", got)
	}
	if got := c.MayString("MISSING", "def"); got != "def" {
		t.Fatalf("missing should fall back, got %q", got)
	}
}

func TestMayNumbers(t *testing.T) {
	c := New().Prefix("N_")
	t.Setenv("N_INT", "7")
	t.Setenv("N_BADINT", "seven")
	t.Setenv("N_F", "1.5")
	t.Setenv("N_BADF", "x")
	if got := c.MayInt("INT", 1); got != 7 {
		t.Fatalf("MayInt = %d", got)
	}
	if got := c.MayInt("BADINT", 3); got != 3 {
		t.Fatalf("invalid int should fall back, got %d", got)
	}
	if got := c.MayFloat64("F", 0); got != 1.5 {
		t.Fatalf("MayFloat64 = %v", got)
	}
	if got := c.MayFloat64("BADF", 2); got != 2 {
		t.Fatalf("invalid float should fall back, got %v", got)
	}
}

func TestMayBoolAndDuration(t *testing.T) {
	c := New().Prefix("B_")
	t.Setenv("B_ON", "true")
	t.Setenv("B_BAD", "maybe")
	t.Setenv("B_D", "250ms")
	t.Setenv("B_BADD", "soon")
	if !c.MayBool("ON", false) {
		t.Fatalf("MayBool true expected")
	}
	if !c.MayBool("BAD", true) {
		t.Fatalf("invalid bool should fall back to default")
	}
	if got := c.MayDuration("D", time.Second); got != 250*time.Millisecond {
		t.Fatalf("MayDuration = %v", got)
	}
	if got := c.MayDuration("BADD", time.Second); got != time.Second {
		t.Fatalf("invalid duration should fall back, got %v", got)
	}
}

func TestMayCSV(t *testing.T) {
	c := New().Prefix("C_")
	t.Setenv("C_LIST", " a, ,b ,c ")
	t.Setenv("C_EMPTY", " , , ")
	if got := c.MayCSV("LIST", nil); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("MayCSV = %v", got)
	}
	def := []string{"*"}
	if got := c.MayCSV("EMPTY", def); !reflect.DeepEqual(got, def) {
		t.Fatalf("all-empty should fall back, got %v", got)
	}
}
