package rules

// rulesSchema is checked against the raw document before any field is decoded,
// so structural mistakes fail with a path into the file.
const rulesSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["terrain"],
  "additionalProperties": false,
  "properties": {
    "influence_radius": {"type": "integer", "minimum": 1, "maximum": 64},
    "terrain": {
      "type": "object",
      "minProperties": 1,
      "additionalProperties": {
        "type": "object",
        "additionalProperties": false,
        "properties": {
          "buildable": {"type": "boolean"},
          "water": {"type": "boolean"},
          "speed": {"type": "object", "additionalProperties": {"type": "string"}}
        }
      }
    },
    "buildings": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["footprint"],
        "additionalProperties": false,
        "properties": {
          "footprint": {"type": "array", "minItems": 1, "items": {"type": "string", "pattern": "^[x_.]+$"}},
          "adjacent": {"type": "integer", "minimum": 0},
          "base_normal": {"type": "boolean"},
          "water_bound": {"type": "boolean"}
        }
      }
    },
    "units": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["movement"],
        "additionalProperties": false,
        "properties": {
          "movement": {"type": "string"},
          "crushable_by": {"type": "array", "items": {"type": "string"}},
          "speed": {"type": "number", "exclusiveMinimum": 0, "maximum": 1}
        }
      }
    }
  }
}`
