/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package verifiable

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// ErrDataModelValidation is returned when a verified credential or presentation breaks the data
// model: a required member is missing or it is not valid at the time of verification.
var ErrDataModelValidation = errors.New("data model validation failed")

func dataModelError(msg string) error {
	return fmt.Errorf("%w: %s", ErrDataModelValidation, msg)
}

func (vc *Credential) validateDataModel(now time.Time) error {
	switch {
	case vc.ID == "":
		return dataModelError("missing id")
	case len(vc.Context) == 0 || vc.Context[0] != ContextURI:
		return dataModelError("missing context")
	case len(vc.Types) == 0 || vc.Types[0] != VCType:
		return dataModelError("missing type")
	case vc.Issuer.ID == "":
		return dataModelError("missing issuer")
	case vc.Subject.ID == "":
		return dataModelError("missing credential subject")
	}

	return validateValidity(vc.Issued, vc.Expired, now, "credential expired")
}

func (vp *Presentation) validateDataModel(now time.Time) error {
	switch {
	case vp.ID == "":
		return dataModelError("missing id")
	case len(vp.Context) == 0 || vp.Context[0] != ContextURI:
		return dataModelError("missing or invalid context")
	case len(vp.Types) == 0 || vp.Types[0] != VPType:
		return dataModelError("missing or invalid type")
	case vp.Holder == "":
		return dataModelError("missing holder")
	}

	return validateValidity(vp.Issued, vp.Expired, now, "presentation expired")
}

func validateValidity(issued time.Time, expired *time.Time, now time.Time, expiredMsg string) error {
	if issued.After(now) {
		return dataModelError("issuance date in future")
	}

	if expired != nil && expired.Before(now) {
		return dataModelError(expiredMsg)
	}

	return nil
}
