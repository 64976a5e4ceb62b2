package gateway

import "testing"

func TestClassify(t *testing.T) {
	cases := map[string]Classification{
		"SELECT * FROM orders":            ClassRead,
		"  select id from orders":         ClassRead,
		"WITH x AS (SELECT 1) SELECT * FROM x": ClassRead,
		"TABLE orders":                    ClassRead,
		"INSERT INTO orders VALUES (1)":   ClassInsert,
		"UPDATE orders SET x = 1":         ClassUpdate,
		"DELETE FROM orders":              ClassDelete,
		"CREATE INDEX foo ON orders (id)": ClassDDL,
		"ALTER TABLE orders ADD COLUMN x int": ClassDDL,
		"DROP TABLE orders":               ClassDDL,
		"TRUNCATE orders":                 ClassDDL,
		"":                                 ClassOther,
		"VACUUM orders":                   ClassOther,
	}
	for sql, want := range cases {
		if got := Classify(sql); got != want {
			t.Errorf("Classify(%q) = %v, want %v", sql, got, want)
		}
	}
}

func TestClassificationIsMutating(t *testing.T) {
	if ClassRead.IsMutating() {
		t.Fatal("read should not be mutating")
	}
	for _, c := range []Classification{ClassInsert, ClassUpdate, ClassDelete, ClassDDL, ClassOther} {
		if !c.IsMutating() {
			t.Fatalf("%v should be mutating", c)
		}
	}
}

func TestClassifyStripsLeadingParen(t *testing.T) {
	if got := Classify("(SELECT * FROM orders)"); got != ClassRead {
		t.Fatalf("expected leading paren to be stripped, got %v", got)
	}
}
