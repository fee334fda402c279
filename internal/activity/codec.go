package activity

import (
	"encoding/json"
	"fmt"
)

func encodePayload(p Payload) ([]byte, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

func decodePayload(kind string, raw []byte) (Payload, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	switch kind {
	case KindTripCreated, KindTripStarted, KindTripCompleted, KindTripPublished, KindTripShared:
		var p TripPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case KindDestinationAdded, KindDestinationVisited:
		var p DestinationPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case KindPhotoUploaded, KindPhotoShared:
		var p PhotoPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case KindPhotoLiked:
		var p LikePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case KindUserFollowed:
		var p FollowPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown activity kind %q", kind)
	}
}
