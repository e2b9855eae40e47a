// Package domain defines the notebook entities: user characters, review
// grades, familiarity levels and the validation rules shared by the scheduler,
// the store and the HTTP layer. It has no infrastructure dependencies.
package domain
