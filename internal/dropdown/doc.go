// Package dropdown coordinates which dropdown of a page is open.
//
// A Manager holds a single active identifier. It is installed once at the
// root of a page (Provide / WithManager) and handed to every component
// through the context.Context, so menus, comboboxes and popovers can close
// each other without knowing about each other. Independent regions of a page
// (a modal with its own dropdown group) install their own Manager.
//
// Mutations are serialised and observers run synchronously, in the order the
// mutations were applied.
package dropdown
