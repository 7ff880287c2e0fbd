/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package did

const documentSchema = `{
  "type": "object",
  "required": ["id"],
  "properties": {
    "@context": {
      "oneOf": [
        {"type": "string"},
        {"type": "array", "items": {"oneOf": [{"type": "string"}, {"type": "object"}]}}
      ]
    },
    "id": {
      "type": "string",
      "pattern": "^did:[a-z0-9]+:.+"
    },
    "controller": {
      "oneOf": [
        {"type": "string"},
        {"type": "array", "items": {"type": "string"}}
      ]
    },
    "alsoKnownAs": {
      "type": "array",
      "items": {"type": "string"}
    },
    "verificationMethod": {
      "type": "array",
      "items": {"$ref": "#/definitions/verificationMethod"}
    },
    "authentication": {"$ref": "#/definitions/references"},
    "assertionMethod": {"$ref": "#/definitions/references"},
    "keyAgreement": {"$ref": "#/definitions/references"},
    "capabilityInvocation": {"$ref": "#/definitions/references"},
    "capabilityDelegation": {"$ref": "#/definitions/references"},
    "service": {
      "type": "array",
      "items": {"$ref": "#/definitions/service"}
    }
  },
  "definitions": {
    "verificationMethod": {
      "type": "object",
      "required": ["id", "type", "controller", "publicKeyJwk"],
      "properties": {
        "id": {"type": "string"},
        "type": {"type": "string"},
        "controller": {"type": "string"},
        "publicKeyJwk": {
          "type": "object",
          "required": ["kty", "crv", "x"],
          "properties": {
            "kty": {"type": "string"},
            "crv": {"type": "string"},
            "x": {"type": "string"},
            "y": {"type": "string"},
            "alg": {"type": "string"}
          }
        }
      }
    },
    "references": {
      "type": "array",
      "items": {"type": "string"}
    },
    "service": {
      "type": "object",
      "required": ["id", "type", "serviceEndpoint"],
      "properties": {
        "id": {"type": "string"},
        "type": {"type": "string"},
        "serviceEndpoint": {
          "oneOf": [
            {"type": "string"},
            {"type": "array", "items": {"type": "string"}}
          ]
        }
      }
    }
  }
}`
