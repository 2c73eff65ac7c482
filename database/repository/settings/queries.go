package settingsRepo

import (
	"clinicbook/models"

	"go.mongodb.org/mongo-driver/bson"
)

func restrictionMatchFilter(r models.SpecialSlotRestriction) bson.M {
	return bson.M{
		"singleton": models.SettingsSingletonKey,
		"special_slot_restrictions": bson.M{
			"$elemMatch": bson.M{"date": r.Date, "clinic": r.Clinic},
		},
	}
}

func restrictionAbsentFilter(r models.SpecialSlotRestriction) bson.M {
	return bson.M{
		"singleton": models.SettingsSingletonKey,
		"special_slot_restrictions": bson.M{
			"$not": bson.M{"$elemMatch": bson.M{"date": r.Date, "clinic": r.Clinic}},
		},
	}
}
