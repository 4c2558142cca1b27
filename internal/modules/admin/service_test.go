package admin

import (
	"errors"
	"testing"

	"github.com/postcraft/core/internal/pkg/apierror"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestPromoInsertErrorDuplicate(t *testing.T) {
	dup := mongo.WriteException{
		WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}},
	}

	err := promoInsertError(dup)
	if !apierror.IsKind(err, apierror.KindValidation) {
		t.Fatalf("duplicate key mapped to %v, want validation", err)
	}
	if got := apierror.MessageOf(err); got != "Promo code already exists" {
		t.Errorf("message = %q, want %q", got, "Promo code already exists")
	}
	if got := apierror.StatusOf(err); got != 400 {
		t.Errorf("status = %d, want 400", got)
	}
}

func TestPromoInsertErrorOther(t *testing.T) {
	err := promoInsertError(errors.New("connection reset"))
	if apierror.IsKind(err, apierror.KindValidation) {
		t.Error("unrelated insert failure mapped to validation")
	}
	if got := apierror.MessageOf(err); got != "internal server error" {
		t.Errorf("message leaked internals: %q", got)
	}
}
