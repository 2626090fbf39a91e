// Package commands defines the saxiib CLI and wires dependencies for subcommands.
//
// Commands
//
//   - init          Create the local identity if it does not exist
//   - whoami        Print id, name, fingerprint and contact card
//   - name          Change the display name
//   - card          Render the contact card as a QR code PNG
//   - scan          Add a contact from QR code images
//   - contacts      List, add and remove contacts
//   - send          Send a text message to a peer
//   - send-media    Send an image, video or voice file to a peer
//   - history       Print the message history
//   - listen        Stay online and print incoming messages
//
// # Implementation
//
// The root command resolves Config from defaults, config.yaml and flags and
// builds the app.Wire before any subcommand runs. Commands that talk to peers
// bring the wire online through the relay; the rest work on local storage
// only.
package commands
