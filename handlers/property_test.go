package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"wellness-ops-backend/models"
)

func TestCreatePartnerProperty(t *testing.T) {
	db := freshDB()
	router := setupPropertyRouter(db)
	_, token := seedAdmin(t, db)

	body := map[string]interface{}{
		"hotel_name":               "Sea View Resort",
		"location":                 "Goa",
		"revenue_share_percentage": 30,
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/properties", body, token))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["ownership_type"] != models.OwnershipPartner {
		t.Errorf("expected default ownership partner, got %v", resp["ownership_type"])
	}
	if resp["revenue_share_percentage"] != 30.0 {
		t.Errorf("expected share 30, got %v", resp["revenue_share_percentage"])
	}
	if resp["status"] != models.StatusActive {
		t.Errorf("expected status active, got %v", resp["status"])
	}
}

func TestCreatePropertyOwnershipRules(t *testing.T) {
	db := freshDB()
	router := setupPropertyRouter(db)
	_, token := seedAdmin(t, db)

	cases := []struct {
		name string
		body map[string]interface{}
		want int
	}{
		{"owned without share", map[string]interface{}{"hotel_name": "Own", "ownership_type": "owned"}, http.StatusCreated},
		{"owned with share", map[string]interface{}{"hotel_name": "Own", "ownership_type": "owned", "revenue_share_percentage": 10}, http.StatusBadRequest},
		{"partner without share", map[string]interface{}{"hotel_name": "P", "ownership_type": "partner"}, http.StatusBadRequest},
		{"partner share above 100", map[string]interface{}{"hotel_name": "P", "revenue_share_percentage": 120}, http.StatusBadRequest},
		{"unknown ownership", map[string]interface{}{"hotel_name": "P", "ownership_type": "leased"}, http.StatusBadRequest},
		{"missing name", map[string]interface{}{"revenue_share_percentage": 10}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, authRequest("POST", "/api/properties", tc.body, token))
			if w.Code != tc.want {
				t.Fatalf("expected status %d, got %d: %s", tc.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestCreatePropertyRequiresAdmin(t *testing.T) {
	db := freshDB()
	router := setupPropertyRouter(db)
	property := seedProperty(t, db, "Sea View", 30)
	_, token := seedTherapist(t, db, "t1@test.com", property, 0)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/properties", map[string]interface{}{"hotel_name": "X", "revenue_share_percentage": 5}, token))

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdatePropertyToOwnedClearsShare(t *testing.T) {
	db := freshDB()
	router := setupPropertyRouter(db)
	_, token := seedAdmin(t, db)
	property := seedProperty(t, db, "Sea View", 30)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/properties/"+property.ID.String(), map[string]interface{}{"ownership_type": "owned"}, token))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var stored models.Property
	db.First(&stored, "id = ?", property.ID)
	if stored.OwnershipType != models.OwnershipOwned {
		t.Errorf("expected owned, got %s", stored.OwnershipType)
	}
	if stored.RevenueSharePercentage != nil {
		t.Errorf("expected share cleared, got %v", *stored.RevenueSharePercentage)
	}
	if stored.HotelName != "Sea View" {
		t.Errorf("expected untouched name, got %s", stored.HotelName)
	}
}

func TestUpdatePropertyRevalidatesMergedRecord(t *testing.T) {
	db := freshDB()
	router := setupPropertyRouter(db)
	_, token := seedAdmin(t, db)
	property := seedProperty(t, db, "Sea View", 30)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/properties/"+property.ID.String(), map[string]interface{}{"revenue_share_percentage": -1}, token))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestArchivePropertyCascadesToTherapists(t *testing.T) {
	db := freshDB()
	router := setupPropertyRouter(db)
	_, token := seedAdmin(t, db)
	property := seedProperty(t, db, "Sea View", 30)
	therapist, _ := seedTherapist(t, db, "t1@test.com", property, 0)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("DELETE", "/api/properties/"+property.ID.String(), nil, token))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if resp := parseResponse(w); resp["therapists_archived"] != 1.0 {
		t.Errorf("expected 1 therapist archived, got %v", resp["therapists_archived"])
	}

	var stored models.Therapist
	db.First(&stored, "id = ?", therapist.ID)
	if stored.Status != models.StatusArchived {
		t.Errorf("expected therapist archived, got %s", stored.Status)
	}
	var user models.User
	db.First(&user, "id = ?", therapist.UserID)
	if user.Status != models.StatusArchived {
		t.Errorf("expected user archived, got %s", user.Status)
	}

	// Archived properties are hidden unless asked for.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/properties", nil, token))
	if got := len(parseResponseArray(w)); got != 0 {
		t.Errorf("expected 0 active properties, got %d", got)
	}
	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/properties?include_archived=true", nil, token))
	if got := len(parseResponseArray(w)); got != 1 {
		t.Errorf("expected 1 property with archived, got %d", got)
	}
}

func TestArchivePropertyTwiceConflicts(t *testing.T) {
	db := freshDB()
	router := setupPropertyRouter(db)
	_, token := seedAdmin(t, db)
	property := seedProperty(t, db, "Sea View", 30)

	router.ServeHTTP(httptest.NewRecorder(), authRequest("DELETE", "/api/properties/"+property.ID.String(), nil, token))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("DELETE", "/api/properties/"+property.ID.String(), nil, token))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRestorePropertyLeavesTherapistsArchived(t *testing.T) {
	db := freshDB()
	router := setupPropertyRouter(db)
	_, token := seedAdmin(t, db)
	property := seedProperty(t, db, "Sea View", 30)
	therapist, _ := seedTherapist(t, db, "t1@test.com", property, 0)

	router.ServeHTTP(httptest.NewRecorder(), authRequest("DELETE", "/api/properties/"+property.ID.String(), nil, token))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/properties/"+property.ID.String()+"/restore", nil, token))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var stored models.Therapist
	db.First(&stored, "id = ?", therapist.ID)
	if stored.Status != models.StatusArchived {
		t.Errorf("expected therapist to stay archived, got %s", stored.Status)
	}
}

func TestDeletePropertyPermanent(t *testing.T) {
	db := freshDB()
	router := setupPropertyRouter(db)
	_, token := seedAdmin(t, db)

	empty := seedProperty(t, db, "Empty", 10)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("DELETE", "/api/properties/"+empty.ID.String()+"/permanent", nil, token))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if resp := parseResponse(w); resp["outcome"] != "deleted" {
		t.Errorf("expected outcome deleted, got %v", resp["outcome"])
	}
	var count int64
	db.Model(&models.Property{}).Where("id = ?", empty.ID).Count(&count)
	if count != 0 {
		t.Error("expected property row removed")
	}

	busy := seedProperty(t, db, "Busy", 10)
	seedTherapist(t, db, "t1@test.com", busy, 0)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("DELETE", "/api/properties/"+busy.ID.String()+"/permanent", nil, token))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestDeletePropertyWithHistoryArchives(t *testing.T) {
	db := freshDB()
	router := setupPropertyRouter(db)
	_, token := seedAdmin(t, db)
	property := seedProperty(t, db, "Historic", 10)
	therapist, _ := seedTherapist(t, db, "t1@test.com", property, 0)
	seedService(t, db, therapist, "2026-02-01", 1000, models.ReceivedByHotel)
	db.Model(&models.Therapist{}).Where("id = ?", therapist.ID).Update("status", models.StatusArchived)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("DELETE", "/api/properties/"+property.ID.String()+"/permanent", nil, token))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if resp := parseResponse(w); resp["outcome"] != "archived" {
		t.Errorf("expected outcome archived, got %v", resp["outcome"])
	}
}

func TestGetPropertyNotFound(t *testing.T) {
	db := freshDB()
	router := setupPropertyRouter(db)
	_, token := seedAdmin(t, db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/properties/"+newID(), nil, token))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/properties/not-a-uuid", nil, token))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}
}
