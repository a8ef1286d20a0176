// Package config loads the firekit YAML configuration.
//
// Environment variables are expanded before parsing, so secrets stay out of
// the file:
//
//	app:
//	  project_id: demo
//	  jwt_secret: ${FIREKIT_JWT_SECRET}
//	fire:
//	  lazy: true
//	  services:
//	    - id: auth
//	    - id: analytics
//	      client_only: true
//
// Unknown keys are rejected. Defaults are applied after parsing and the
// result is validated before Load returns.
package config
