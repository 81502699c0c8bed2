package db

import (
	"errors"
	"testing"
)

func TestIsUniqueViolation(t *testing.T) {
	err := errors.New("UNIQUE constraint failed: brands.name")

	if !IsUniqueViolation(err, "") {
		t.Fatal("expected bare unique violation match")
	}
	if !IsUniqueViolation(err, "brands.name") {
		t.Fatal("expected column-qualified match")
	}
	if IsUniqueViolation(err, "products.barcode") {
		t.Fatal("did not expect a different column to match")
	}
	if IsUniqueViolation(errors.New("FOREIGN KEY constraint failed"), "") {
		t.Fatal("foreign key failures are not unique violations")
	}
	if IsUniqueViolation(nil, "brands.name") {
		t.Fatal("nil error should never match")
	}
}
